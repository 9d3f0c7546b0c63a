package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name:     "all flags",
			args:     []string{"-d", "/tmp/vault", "-l", "debug", "-b", "zap"},
			expected: &Config{DataDir: "/tmp/vault", LogLevel: "debug", LogBackend: "zap"},
		},
		{
			name:     "unrelated flags ignored",
			args:     []string{"-c", "cfg.json", "-d", "dir", "-x"},
			expected: &Config{DataDir: "dir"},
		},
		{
			name:        "missing value",
			args:        []string{"-d"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
