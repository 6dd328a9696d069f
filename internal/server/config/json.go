package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/convokeeper/internal/flagx"
	"github.com/dmitrijs2005/convokeeper/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig mirrors Config for unmarshalling. Pointer fields distinguish
// "absent" from zero so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        *string         `json:"database_dsn"`
	PBKDF2Iterations   *int            `json:"pbkdf2_iterations"`
	SaltLength         *int            `json:"salt_length"`
	KeyLength          *int            `json:"key_length"`
	LoginRetryDelay    *timex.Duration `json:"login_retry_delay"`
	HashConcurrency    *int            `json:"hash_concurrency"`
	RateLimitPerMinute *int            `json:"rate_limit_per_minute"`
	RateLimitBurst     *int            `json:"rate_limit_burst"`
}

// parseJson overlays config with the JSON file passed via -c or -config.
// Comments and trailing commas are allowed. Without either flag nothing happens. An unreadable or malformed file panics,
// since the service cannot start on a config it failed to read.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.PBKDF2Iterations, c.PBKDF2Iterations)
	setIf(&config.SaltLength, c.SaltLength)
	setIf(&config.KeyLength, c.KeyLength)
	setIf(&config.HashConcurrency, c.HashConcurrency)
	setIf(&config.RateLimitPerMinute, c.RateLimitPerMinute)
	setIf(&config.RateLimitBurst, c.RateLimitBurst)
	if c.LoginRetryDelay != nil {
		config.LoginRetryDelay = c.LoginRetryDelay.Duration
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
