package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-i", "200000", "-w", "5", "-n", "2", "-m", "60", "-b", "3",
		}, expected: &Config{
			EndpointAddrGRPC:   "127.0.0.1:9090",
			DatabaseDSN:        "db",
			PBKDF2Iterations:   200000,
			LoginRetryDelay:    5 * time.Second,
			HashConcurrency:    2,
			RateLimitPerMinute: 60,
			RateLimitBurst:     3,
		}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "non-numeric iterations", args: []string{"cmd", "-i", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
