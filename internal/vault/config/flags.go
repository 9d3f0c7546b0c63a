package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/genpass/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   data directory holding the database, key and pepper files
//	-l string   log level (debug, info, warn, error)
//	-b string   log backend (slog, zap)
//
// Only these flags are parsed; args is filtered with flagx.FilterArgs first.
// It panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-l", "-b"})

	fs := flag.NewFlagSet("genpass", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend (slog or zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
