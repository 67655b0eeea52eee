package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt-16byt")

	k1 := DeriveKey([]byte("pass"), salt)
	k2 := DeriveKey([]byte("pass"), salt)
	k3 := DeriveKey([]byte("other"), salt)
	k4 := DeriveKey([]byte("pass"), []byte("another-salt-16b"))

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
}

func TestNewSalt(t *testing.T) {
	a, b := NewSalt(), NewSalt()
	assert.Len(t, a, SaltSize)
	assert.NotEqual(t, a, b)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pass"), NewSalt())
	plain := []byte(`{"access_token":"abc"}`)

	sealed, err := Seal(key, plain)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, plain))

	got, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSeal_NonceIsFresh(t *testing.T) {
	key := DeriveKey([]byte("pass"), NewSalt())
	a, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_Errors(t *testing.T) {
	key := DeriveKey([]byte("pass"), NewSalt())
	sealed, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Open(DeriveKey([]byte("nope"), NewSalt()), sealed)
		assert.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		_, err := Open(key, bad)
		assert.Error(t, err)
	})

	t.Run("short", func(t *testing.T) {
		_, err := Open(key, []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrShortCiphertext)
	})

	t.Run("bad key size", func(t *testing.T) {
		_, err := Seal([]byte("short"), []byte("x"))
		assert.Error(t, err)
	})
}
