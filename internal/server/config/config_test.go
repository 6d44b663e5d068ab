package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, 10*time.Minute, c.SessionIdleTimeout)
	assert.Equal(t, 5*time.Minute, c.InviteTicketValidity)
	assert.Equal(t, "env.json.enc", c.SecretsLocation)
	assert.Empty(t, c.SecretKey)
	assert.Empty(t, c.DatabaseKey)
	assert.Empty(t, c.DatabaseDSN)
}

func TestLoadConfig_DefaultsWithoutArgs(t *testing.T) {
	c := LoadConfig(nil)
	require.NotNil(t, c)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, c))
}

func TestApplySecrets(t *testing.T) {
	c := &Config{SecretKey: "old", DatabaseDSN: "dsn-old"}
	c.ApplySecrets(&Secrets{SecretKey: "new", DatabaseKey: "k"})

	assert.Equal(t, "new", c.SecretKey)
	assert.Equal(t, "dsn-old", c.DatabaseDSN)
	assert.Equal(t, "k", c.DatabaseKey)

	c.ApplySecrets(nil)
	assert.Equal(t, "new", c.SecretKey)
}
