package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"golang.org/x/term"
)

var ErrNoPassphrase = errors.New("no passphrase: set " + common.ConfigKeyEnv + " or run on a terminal")

var (
	lookupEnv    = os.LookupEnv
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// ReadPassphrase returns the sealed-config passphrase from the environment
// or, failing that, prompts on the terminal without echo.
func ReadPassphrase(prompt io.Writer) (string, error) {
	if v, ok := lookupEnv(common.ConfigKeyEnv); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	fd := stdinFd()
	if !isTerminal(fd) {
		return "", ErrNoPassphrase
	}

	fmt.Fprint(prompt, "Enter encryption key: ")
	b, err := readPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
