package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   application origin base URL (default from Config)
//	-s string   snapshot path or sqlite DSN (default from Config)
//	-d string   store driver, "file" or "sqlite" (default from Config)
//	-i int      online check interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.OriginBaseURL, "a", cfg.OriginBaseURL, "application origin base URL")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "snapshot path or sqlite DSN")
	fs.StringVar(&cfg.StoreDriver, "d", cfg.StoreDriver, "store driver (file or sqlite)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
