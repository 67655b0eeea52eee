package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		known []string
		want  []string
	}{
		{
			name:  "separate value",
			args:  []string{"-c", "conf.yaml", "-x", "1"},
			known: []string{"-c"},
			want:  []string{"-c", "conf.yaml"},
		},
		{
			name:  "equals form",
			args:  []string{"-config=conf.json", "-a", "http://h"},
			known: []string{"-c", "-config"},
			want:  []string{"-config=conf.json"},
		},
		{
			name:  "unknown flags and positionals dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			known: []string{"-c"},
			want:  []string{},
		},
		{
			name:  "trailing flag without value kept",
			args:  []string{"-a"},
			known: []string{"-a"},
			want:  []string{"-a"},
		},
		{
			name:  "next dash token is not a value",
			args:  []string{"-c", "-t", "5"},
			known: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "several known flags keep order",
			args:  []string{"-t", "5", "-c", "x.json", "-a", "http://h"},
			known: []string{"-a", "-c"},
			want:  []string{"-c", "x.json", "-a", "http://h"},
		},
		{
			name:  "repeated flag preserved",
			args:  []string{"-c", "one", "-c", "two"},
			known: []string{"-c"},
			want:  []string{"-c", "one", "-c", "two"},
		},
		{
			name:  "empty",
			args:  []string{},
			known: []string{"-c"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.known))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	t.Run("short", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "/tmp/a.yaml"}
		assert.Equal(t, "/tmp/a.yaml", ConfigFileFlag())
	})

	t.Run("long with equals", func(t *testing.T) {
		os.Args = []string{"bin", "-config=/tmp/b.json"}
		assert.Equal(t, "/tmp/b.json", ConfigFileFlag())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"bin", "-a", "http://h"}
		assert.Empty(t, ConfigFileFlag())
	})

	t.Run("last wins", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "1.json", "-config", "2.json"}
		assert.Equal(t, "2.json", ConfigFileFlag())
	})
}
