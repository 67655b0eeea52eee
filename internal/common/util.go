package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes from the system CSPRNG.
// It panics if the random source fails, which only happens on a broken OS.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
