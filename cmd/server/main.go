package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/config"
	"github.com/riverkeep/river-ops/internal/database"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/observability"
	"github.com/riverkeep/river-ops/internal/server"
	"github.com/riverkeep/river-ops/internal/services"
	"github.com/riverkeep/river-ops/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// app carries what every subcommand needs after configuration is loaded.
type app struct {
	configFile string
	cfg        *config.Config
	log        logger.Logger
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "river-ops",
		Short:        "River restoration operations server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default ./config.yaml or /etc/river-ops/config.yaml)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("db-driver", "", "database driver: sqlite, mysql, postgres")
	flags.String("listen", "", "HTTP listen address")
	for key, name := range map[string]string{
		"log_level":   "log-level",
		"db_driver":   "db-driver",
		"listen_addr": "listen",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		serveCommand(a),
		migrateCommand(a),
		createUserCommand(a),
		cleanupPhotosCommand(a),
		genConfigCommand(),
	)
	return root
}

func (a *app) load() error {
	if err := config.Init(a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	return nil
}

// openDB connects and migrates. Every command that touches the database goes
// through here so a fresh install works with any of them.
func (a *app) openDB() (*gorm.DB, error) {
	db, err := database.Open(a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, a.log); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

func (a *app) blobStore() *storage.FSStore {
	return storage.NewFSStore(a.cfg.MediaRoot, "/media")
}

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(a.cfg.GinMode)

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	sessionStore, err := server.NewSessionStore(a.cfg)
	if err != nil {
		return err
	}

	var aiService *services.AIService
	if a.cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(a.cfg.OpenAIAPIKey)
	} else {
		a.log.Info("OPENAI_API_KEY not set, task drafting disabled")
	}

	srv := server.New(server.Deps{
		Config:   a.cfg,
		DB:       db,
		Log:      a.log,
		Metrics:  metrics,
		Store:    a.blobStore(),
		Sessions: sessionStore,
		AI:       aiService,
	})

	httpServer := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting",
			logger.String("addr", a.cfg.ListenAddr),
			logger.String("session_store", a.cfg.SessionStore),
			logger.String("week_start", a.cfg.WeekStart))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
