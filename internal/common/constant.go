package common

// SessionName is the cookie name of the login session.
const SessionName = "pagekeeper-session"

// ConfigKeyEnv names the environment variable that may carry the passphrase
// for the sealed secrets blob.
const ConfigKeyEnv = "PAGEKEEPER_CONFIG_KEY"
