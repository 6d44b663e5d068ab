package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pagekeeper/internal/flagx"
	"github.com/dmitrijs2005/pagekeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept both "10m"
// style strings and integer nanoseconds. Zero values and absent booleans
// leave the current setting untouched.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SessionIdleTimeout   timex.Duration `json:"session_idle_timeout"`
	SecureCookies        *bool          `json:"secure_cookies"`
	InviteTicketValidity timex.Duration `json:"invite_ticket_validity"`
	SecretsLocation      string         `json:"secrets_location"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing is loaded; an unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SecretsLocation, c.SecretsLocation)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.SessionIdleTimeout.Duration > 0 {
		config.SessionIdleTimeout = c.SessionIdleTimeout.Duration
	}
	if c.InviteTicketValidity.Duration > 0 {
		config.InviteTicketValidity = c.InviteTicketValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
