package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", "http://h:1/api", "-t", "20", "-s", "/tmp/s.db", "-l", "debug", "-unknown", "x"}

	cfg := defaults()
	require.NoError(t, parseFlags(&cfg))

	assert.Equal(t, "http://h:1/api", cfg.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/s.db", cfg.StatePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseFlags_NoneKeepsValues(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := defaults()
	cfg.RequestTimeout = 1500 * time.Millisecond
	require.NoError(t, parseFlags(&cfg))

	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout, "sub-second value survives when -t is absent")
}

func TestParseFlags_BadValue(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-t", "abc"}

	cfg := defaults()
	require.Error(t, parseFlags(&cfg))
}
