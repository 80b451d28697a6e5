package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   address and port of the backend server
//	-t int      request timeout in seconds, 0 disables it
//	-o string   output format, "text" or "json"
//
// Unknown arguments are dropped by flagx.FilterArgs. Parse errors panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	output := fs.String("o", string(cfg.Output), "output format: text or json")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.Output = OutputFormat(*output)
}
