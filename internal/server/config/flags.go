package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC health bind address; "" disables
//	-m string   storage backend: postgres or memory
//	-d string   PostgreSQL DSN
//	-v string   views location: directory or s3://bucket/prefix
//	-p string   public directory for static files
//	-l string   log level
//
// Credentials have no flags; they would be visible in process listings.
func parseFlags(config *Config, args []string) error {
	// Filter args to include only the flags handled here.
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-m", "-d", "-v", "-p", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address")
	fs.StringVar(&config.Storage, "m", config.Storage, "storage backend (postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ViewsDir, "v", config.ViewsDir, "views directory or s3://bucket/prefix")
	fs.StringVar(&config.PublicDir, "p", config.PublicDir, "public directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
