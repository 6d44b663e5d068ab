package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, env string, envSet, tty bool, pw string, pwErr error) {
	t.Helper()
	origEnv, origTTY, origRead, origFd := lookupEnv, isTerminal, readPassword, stdinFd
	lookupEnv = func(key string) (string, bool) {
		if key == common.ConfigKeyEnv {
			return env, envSet
		}
		return "", false
	}
	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return []byte(pw), pwErr }
	stdinFd = func() int { return 0 }
	t.Cleanup(func() { lookupEnv, isTerminal, readPassword, stdinFd = origEnv, origTTY, origRead, origFd })
}

func TestReadPassphrase_Env(t *testing.T) {
	stubTerminal(t, " abc= \n", true, false, "", nil)

	var out bytes.Buffer
	got, err := ReadPassphrase(&out)
	require.NoError(t, err)
	assert.Equal(t, "abc=", got)
	assert.Empty(t, out.String())
}

func TestReadPassphrase_Prompt(t *testing.T) {
	stubTerminal(t, "", false, true, "typed\n", nil)

	var out bytes.Buffer
	got, err := ReadPassphrase(&out)
	require.NoError(t, err)
	assert.Equal(t, "typed", got)
	assert.Contains(t, out.String(), "Enter encryption key")
}

func TestReadPassphrase_NoTerminal(t *testing.T) {
	stubTerminal(t, "", false, false, "", nil)

	_, err := ReadPassphrase(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoPassphrase)
}

func TestReadPassphrase_ReadError(t *testing.T) {
	stubTerminal(t, "", false, true, "", errors.New("eof"))

	_, err := ReadPassphrase(&bytes.Buffer{})
	assert.ErrorContains(t, err, "eof")
}
