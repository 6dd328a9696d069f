package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/convokeeper/internal/flagx"
)

// parseFlags overlays config with command-line flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-i int      PBKDF2 iteration count
//	-w int      login retry delay, seconds
//	-n int      concurrent password hashes
//	-m int      Register/Authenticate calls per minute per caller
//	-b int      rate limiter burst
//
// Only these flags are looked at, so other components can share os.Args.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-w", "-n", "-m", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.PBKDF2Iterations, "i", config.PBKDF2Iterations, "PBKDF2 iterations")
	retryDelay := fs.Int("w", int(config.LoginRetryDelay.Seconds()), "login retry delay (in seconds)")
	fs.IntVar(&config.HashConcurrency, "n", config.HashConcurrency, "concurrent password hashes")
	fs.IntVar(&config.RateLimitPerMinute, "m", config.RateLimitPerMinute, "login/register calls per minute per caller")
	fs.IntVar(&config.RateLimitBurst, "b", config.RateLimitBurst, "rate limiter burst")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LoginRetryDelay = time.Duration(*retryDelay) * time.Second
}
