// Package server initializes and runs the PageKeeper web application.
// It opens the database, applies migrations, wires the services and
// serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/logging"
	"github.com/dmitrijs2005/pagekeeper/internal/server/config"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pagekeeper/internal/server/services"
	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
	"github.com/dmitrijs2005/pagekeeper/internal/server/web"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const sessionCookieName = "pagekeeper_session"

// Swapped in tests.
var (
	openDB               = sql.Open
	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *web.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if c.DatabaseDSN == "" {
		return nil, errors.New("database dsn is not configured")
	}
	if c.SecretKey == "" {
		return nil, errors.New("secret key is not configured")
	}
	databaseKey, err := cryptox.KeyFromString(c.DatabaseKey)
	if err != nil {
		return nil, fmt.Errorf("invalid database key: %w", err)
	}

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	svc := web.Services{
		Users:   services.NewUserService(db, rm, databaseKey),
		Pages:   services.NewPageService(db, rm, databaseKey),
		Invites: services.NewInviteService(db, rm),
		Posts:   services.NewPostService(db, rm, databaseKey),
	}
	sm := session.NewManager(sessionCookieName, c.SecretKey, c.SecureCookies)

	srv, err := web.NewHTTPServer(web.Options{
		Address:              c.EndpointAddrHTTP,
		TicketSecret:         []byte(c.SecretKey),
		SessionIdleTimeout:   c.SessionIdleTimeout,
		InviteTicketValidity: c.InviteTicketValidity,
	}, logger, sm, svc)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled or a signal arrives, then closes the
// database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "closing database", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
