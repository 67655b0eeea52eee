package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/flagx"
)

// parseFlags overlays Config with command-line flags. os.Args is filtered
// through flagx.FilterArgs first so foreign flags are ignored.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the IAM API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StatePath, "s", cfg.StatePath, "path of the local state database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" && *timeout > 0 {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
