package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minesweeper/internal/cache"
	"minesweeper/internal/config"
	"minesweeper/internal/database"
	"minesweeper/internal/handlers"
	"minesweeper/internal/host"
	"minesweeper/internal/i18n"
	"minesweeper/internal/leaderboard"
	"minesweeper/internal/websocket"
	"minesweeper/pkg/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagPort     string
	flagDBDriver string

	tokenFID      int64
	tokenUsername string
	tokenTTL      time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minesweeper",
		Short: "Minesweeper mini app server",
		Long: `minesweeper serves the score API, the host manifest and live games
over a websocket.

Run with no arguments to start the server
	minesweeper

Create the schema without serving
	minesweeper migrate
`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagDBDriver, "db-driver", "", "Score store: sqlite, gorm or postgres (overrides DB_DRIVER)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the score schema",
		RunE:  runMigrate,
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a host token for a player",
		RunE:  runToken,
	}
	tokenCmd.Flags().Int64Var(&tokenFID, "fid", 0, "Player fid")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "Player display name")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("fid")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
	return rootCmd
}

// loadConfig reads the environment, applies flag overrides and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagPort != "" {
		cfg.Server.Port = flagPort
	}
	if flagDBDriver != "" {
		cfg.Database.Driver = flagDBDriver
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	setupLogging(cfg.Log)
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (database.Database, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("Schema is up to date (%s)", cfg.Database.Driver)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bridge := host.NewTokenBridge(cfg.Host)
	token, err := bridge.IssueToken(models.Player{FID: tokenFID, Username: tokenUsername}, tokenTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Printf("Score store ready (%s)", cfg.Database.Driver)

	// Initialize Redis cache (optional)
	var redisCache cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(cfg)
		if err != nil {
			log.Printf("Failed to connect to Redis, continuing without cache: %v", err)
		} else {
			redisCache = rc
			defer rc.Close()
			log.Println("Redis cache initialized successfully")
		}
	}

	translator, err := i18n.New(cfg.I18n.DefaultLanguage, cfg.I18n.SupportedLanguages)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	svc := leaderboard.NewService(db, redisCache, cfg.Leaderboard)
	bridge := host.NewTokenBridge(cfg.Host)
	if cfg.Host.TokenSecret == "" && !cfg.Host.DemoMode {
		log.Warn("No host token secret and demo mode off: players must pass fid in the query")
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(svc, bridge, translator, cfg.Game)
	go hub.Run(ctx)

	router := handlers.NewRouter(handlers.Dependencies{
		Config:      cfg,
		Leaderboard: svc,
		Bridge:      bridge,
		I18n:        translator,
		Hub:         hub,
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
