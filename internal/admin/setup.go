package admin

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/server/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const keyBits = 256

var (
	disallowed     = regexp.MustCompile(`[^a-zA-Z0-9!@#$%^&*()_+=-]`)
	disallowedHost = regexp.MustCompile(`[^a-zA-Z0-9._:-]`)
)

// sanitize strips characters matched by disallow and reports whether
// anything was removed.
func sanitize(in string, disallow *regexp.Regexp) (string, bool) {
	out := disallow.ReplaceAllString(in, "")
	return out, out != in
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askSanitized prompts and sanitizes the answer, warning when the input
// had to be changed.
func (p *prompter) askSanitized(question string, disallow *regexp.Regexp) (string, error) {
	raw, err := p.ask(question)
	if err != nil {
		return "", err
	}
	clean, changed := sanitize(raw, disallow)
	if changed {
		fmt.Fprintln(p.out, color.RedString("Warning: Sanitization was required on your input. This may have unintended effects."))
	}
	return clean, nil
}

func (p *prompter) postgresDSN() (string, error) {
	var fields [5]string
	questions := []struct {
		text     string
		disallow *regexp.Regexp
	}{
		{"Please enter your postgres username: ", disallowed},
		{"Please enter your postgres password: ", disallowed},
		{"Please enter the host of your postgres server: ", disallowedHost},
		{"Please enter the port of your postgres server: ", disallowed},
		{"Please enter the database name: ", disallowed},
	}
	for i, q := range questions {
		v, err := p.askSanitized(q.text, q.disallow)
		if err != nil {
			return "", err
		}
		fields[i] = v
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(fields[0], fields[1]),
		Host:   net.JoinHostPort(fields[2], fields[3]),
		Path:   "/" + fields[4],
	}
	return u.String(), nil
}

func newKey() (string, error) {
	key, err := cryptox.GenerateKey(keyBits)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)
	return cryptox.KeyToString(key), nil
}

func newSetupCmd(o *options) *cobra.Command {
	var (
		force     bool
		skipCheck bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate keys, collect the database connection and write the sealed secrets document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			c := o.loadConfig()

			if !force && !strings.HasPrefix(c.SecretsLocation, "s3://") {
				if _, err := os.Stat(c.SecretsLocation); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", c.SecretsLocation)
				}
			}

			p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: out}

			fmt.Fprintln(out, "Begin setup process")
			fmt.Fprintln(out, "Generating secret key")
			secretKey, err := newKey()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Retrieving database connection data")
			dsn, err := p.postgresDSN()
			if err != nil {
				return err
			}
			if !skipCheck {
				if err := pingDSN(ctx, dsn); err != nil {
					fmt.Fprintln(out, color.RedString("✗")+" Connection failed: "+err.Error())
					return fmt.Errorf("database connection failed: %w", err)
				}
				fmt.Fprintln(out, color.GreenString("✓")+" Database connection successful")
			}

			fmt.Fprintln(out, "Creating database key")
			databaseKey, err := newKey()
			if err != nil {
				return err
			}

			passphrase, err := newKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, color.YellowString("WARNING:")+" the encryption key below seals the data generated so far.")
			fmt.Fprintln(out, "You will need to enter it every time the server is started. Store it safely.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Encryption key: "+color.CyanString(passphrase))
			if _, err := p.ask("Press enter to continue"); err != nil {
				return err
			}

			fmt.Fprintln(out, "Encrypting data")
			sealed, err := config.Seal(&config.Secrets{
				SecretKey:   secretKey,
				DatabaseDSN: dsn,
				DatabaseKey: databaseKey,
			}, passphrase)
			if err != nil {
				return err
			}
			if err := config.WriteSealed(ctx, c, sealed); err != nil {
				return err
			}

			fmt.Fprintln(out, color.GreenString("✓")+" Setup successful, secrets written to "+color.YellowString(c.SecretsLocation))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing secrets file")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "do not test the database connection")
	return cmd
}
