package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// unsealed reads the passphrase and opens the sealed document at c.
// A wrong passphrase is reported the same way the server does.
func unsealed(ctx context.Context, c *config.Config, out io.Writer) (*config.Secrets, error) {
	passphrase, err := config.ReadPassphrase(out)
	if err != nil {
		return nil, err
	}
	sealed, err := config.ReadSealed(ctx, c)
	if err != nil {
		return nil, err
	}
	s, err := config.Unseal(sealed, passphrase)
	if errors.Is(err, common.ErrIncorrectConfigKey) {
		fmt.Fprintln(out, color.RedString("Error: Incorrect encryption key"))
	}
	return s, err
}

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations using the sealed connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := o.loadConfig()
			s, err := unsealed(cmd.Context(), c, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.ApplySecrets(s)

			if err := migrate(cmd.Context(), c.DatabaseDSN); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Migrations applied")
			return nil
		},
	}
}

func newRevealCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal",
		Short: "Print the decrypted secrets document",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := unsealed(cmd.Context(), o.loadConfig(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			doc, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		},
	}
}
