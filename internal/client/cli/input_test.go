package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(in, "Again?", &out)
	require.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword("Password", &out)
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), pw)
	require.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	_, err = GetPassword("Password", &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetConfirmation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"no\n", false},
		{"\n", false},
		{"whatever\n", false},
	}
	for _, tc := range tests {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetConfirmation(rdr(tc.input), "Sure?", &out)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestGetList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"commas", "ROLE_USER,ROLE_ADMIN\n", []string{"ROLE_USER", "ROLE_ADMIN"}},
		{"commas and spaces", " ROLE_USER , ROLE_ADMIN \n", []string{"ROLE_USER", "ROLE_ADMIN"}},
		{"spaces only", "a b\tc\n", []string{"a", "b", "c"}},
		{"empty line gives empty slice", "\n", []string{}},
		{"EOF without newline", "a,b", []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetList(rdr(tc.input), "Roles", &out)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
