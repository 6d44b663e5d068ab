package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session and ticket secret
//	-t int      session idle timeout, minutes
//	-i int      invite ticket validity, minutes
//	-secure     mark the session cookie Secure (or -secure=false)
//	-k string   sealed secrets location (path or s3://bucket/key)
//	-u string   S3 root user
//	-p string   S3 root password
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// Unknown arguments are dropped by flagx.FilterArgs first so the JSON
// config flags do not trip the parser. Parse errors panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-i", "-k", "-u", "-p", "-g", "-e", "-secure"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	idle := fs.Int("t", int(config.SessionIdleTimeout.Minutes()), "session idle timeout (in minutes)")
	ticket := fs.Int("i", int(config.InviteTicketValidity.Minutes()), "invite ticket validity (in minutes)")

	fs.BoolVar(&config.SecureCookies, "secure", config.SecureCookies, "mark the session cookie Secure")

	fs.StringVar(&config.SecretsLocation, "k", config.SecretsLocation, "sealed secrets location")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionIdleTimeout = time.Duration(*idle) * time.Minute
	config.InviteTicketValidity = time.Duration(*ticket) * time.Minute
}
