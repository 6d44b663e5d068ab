// Package admin implements pkadmin, the operator tool that creates the
// sealed secrets document, applies migrations and inspects the document.
package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pagekeeper/internal/server/config"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Swapped in tests.
var (
	openDB               = sql.Open
	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type options struct {
	configFile      string
	secretsLocation string
}

// NewRootCmd builds the pkadmin command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "pkadmin",
		Short: "pkadmin - operator tool for the PageKeeper server",
		Long: `pkadmin prepares and maintains a PageKeeper installation.

Available Commands:
  setup      generate keys and write the sealed secrets document
  migrate    apply database migrations
  reveal     print the decrypted secrets document
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&o.configFile, "config", "c", "", "JSON config file")
	root.PersistentFlags().StringVarP(&o.secretsLocation, "secrets", "k", "", "sealed secrets location (path or s3://bucket/key)")

	root.AddCommand(newSetupCmd(o))
	root.AddCommand(newMigrateCmd(o))
	root.AddCommand(newRevealCmd(o))

	return root
}

// loadConfig applies the same layering as the server: defaults, then the
// JSON file, then the secrets location override.
func (o *options) loadConfig() *config.Config {
	var args []string
	if o.configFile != "" {
		args = []string{"-c", o.configFile}
	}
	c := config.LoadConfig(args)
	if o.secretsLocation != "" {
		c.SecretsLocation = o.secretsLocation
	}
	return c
}

func pingDSN(ctx context.Context, dsn string) error {
	db, err := openDB("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

func migrate(ctx context.Context, dsn string) error {
	db, err := openDB("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	return newRepositoryManager().RunMigrations(ctx, db)
}
