package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/applylog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server
//	-i int      online check interval in seconds
//	-d string   data directory
//	-tls        connect with TLS
//	-n int      jobs per page
//	-m int      failed sync attempts before a change is blocked
//	-log string log level (debug, info, warn, error)
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// loaders do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d", "-tls", "-n", "-m", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.BoolVar(&cfg.UseTLS, "tls", cfg.UseTLS, "use TLS for the server connection")
	fs.IntVar(&cfg.PageSize, "n", cfg.PageSize, "jobs per page")
	fs.IntVar(&cfg.MaxSyncAttempts, "m", cfg.MaxSyncAttempts, "max sync attempts per change")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
