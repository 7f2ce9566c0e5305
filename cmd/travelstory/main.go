package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/NitishSati26/travel-story/internal/blob"
	"github.com/NitishSati26/travel-story/internal/config"
	"github.com/NitishSati26/travel-story/internal/middleware"
	"github.com/NitishSati26/travel-story/internal/rest"
	"github.com/NitishSati26/travel-story/internal/router"
	"github.com/NitishSati26/travel-story/internal/service"
	"github.com/NitishSati26/travel-story/internal/store"
	"github.com/NitishSati26/travel-story/internal/token"
)

func run(ctx context.Context, configFile, migrationsDir string) error {
	slog.Info("starting travel story service")

	var cfg config.Config
	if configFile != "" {
		var err error
		cfg, err = config.FromFile(configFile)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		cfg = config.FromEnv()
	}

	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	if err := migrateDB(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pgs := store.NewPostgresStore(db)

	blobs, err := blob.NewDiskStore(blob.DiskStoreConfig{
		ServeRoot:   cfg.Blob.ServeRoot,
		Placeholder: cfg.Blob.Placeholder,
		Root:        cfg.Blob.Root,
		MaxWidth:    cfg.Blob.MaxWidth,
		MaxHeight:   cfg.Blob.MaxHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to create upload store: %w", err)
	}

	tokens := token.NewJWTIssuer(token.JwtConfig{
		Secret: []byte(cfg.AuthSecret),
		Issuer: "travel-story",
		TTL:    cfg.TokenTTL,
	})

	accounts := service.NewAccountService(pgs, tokens, service.AccountServiceConfig{
		HashCost: cfg.BcryptCost,
	})
	stories := service.NewStoryService(pgs, blobs)

	r := router.New()
	r.Use(middleware.Recover(), middleware.Log(), middleware.CORS())
	r.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	api := rest.NewAPI(accounts, stories,
		rest.WithAuth(middleware.Auth([]byte(cfg.AuthSecret))),
		rest.WithUploadsDir(cfg.Blob.Root),
		rest.WithAssetsDir(cfg.Blob.AssetsRoot),
		rest.WithMaxImageSize(cfg.Blob.MaxSize),
	)
	r.Handle("/", api)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func migrateDB(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func main() {
	configFile := flag.String("config", "", "path to a properties config file")
	migrationsDir := flag.String("migrations", "migrations", "path to the migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configFile, *migrationsDir); err != nil {
		slog.Error("travel story service terminated with error", "error", err)
		os.Exit(1)
	}
}
