// Package config handles configuration for the server component,
// including defaults, JSON overlay, command-line flags and the sealed
// secrets document.
package config

import "time"

// Config holds runtime settings for the PageKeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the web endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Normally supplied by the sealed secrets.
//   - SecretKey: signs session cookies and invite tickets. Normally sealed.
//   - DatabaseKey: base64 AES key for server-side encryption of e-mails and
//     post timestamps. Normally sealed.
//   - SessionIdleTimeout: inactivity window after which a session is dropped.
//   - SecureCookies: mark the session cookie Secure. Enable behind TLS.
//   - InviteTicketValidity: lifetime of an invite ticket.
//   - SecretsLocation: path or s3://bucket/key of the sealed secrets blob.
//   - S3RootUser / S3RootPassword / S3Region / S3BaseEndpoint: S3-compatible
//     backend used when SecretsLocation is an s3:// URL.
type Config struct {
	EndpointAddrHTTP     string
	DatabaseDSN          string
	SecretKey            string
	DatabaseKey          string
	SessionIdleTimeout   time.Duration
	SecureCookies        bool
	InviteTicketValidity time.Duration
	SecretsLocation      string
	S3RootUser           string
	S3RootPassword       string
	S3Region             string
	S3BaseEndpoint       string
}

// LoadDefaults populates Config with development defaults.
// Secrets are left empty; they come from the sealed document.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.SessionIdleTimeout = 10 * time.Minute
	c.InviteTicketValidity = 5 * time.Minute
	c.SecretsLocation = "env.json.enc"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// ApplySecrets copies non-empty unsealed values into the config.
func (c *Config) ApplySecrets(s *Secrets) {
	if s == nil {
		return
	}
	if s.SecretKey != "" {
		c.SecretKey = s.SecretKey
	}
	if s.DatabaseDSN != "" {
		c.DatabaseDSN = s.DatabaseDSN
	}
	if s.DatabaseKey != "" {
		c.DatabaseKey = s.DatabaseKey
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
