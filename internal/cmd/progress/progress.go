// Package progress parses progress command flags and starts the HTTP runtime.
package progress

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	entrypoint "github.com/proact-eco/proact/internal/platform/cmd"
	"github.com/proact-eco/proact/internal/services/auth/identity"
	authsqlite "github.com/proact-eco/proact/internal/services/auth/storage/sqlite"
	"github.com/proact-eco/proact/internal/services/progress/api/httpapi"
	"github.com/proact-eco/proact/internal/services/progress/app"
	progresssqlite "github.com/proact-eco/proact/internal/services/progress/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds progress command configuration.
type Config struct {
	Port           int           `env:"PROACT_PROGRESS_PORT" envDefault:"8080"`
	Addr           string        `env:"PROACT_PROGRESS_ADDR"`
	AuthDBPath     string        `env:"PROACT_AUTH_DB_PATH" envDefault:"proact-auth.db"`
	ProgressDBPath string        `env:"PROACT_PROGRESS_DB_PATH" envDefault:"proact-progress.db"`
	MissionDepth   int           `env:"PROACT_MISSION_DEPTH" envDefault:"2"`
	GatewayTimeout time.Duration `env:"PROACT_PROGRESS_GATEWAY_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The progress server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The progress server listen address (overrides -port)")
	fs.StringVar(&cfg.AuthDBPath, "auth-db", cfg.AuthDBPath, "Path to the auth SQLite database")
	fs.StringVar(&cfg.ProgressDBPath, "progress-db", cfg.ProgressDBPath, "Path to the progress SQLite database")
	fs.IntVar(&cfg.MissionDepth, "mission-depth", cfg.MissionDepth, "Bounded mission traversal depth")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the progress HTTP service and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProgress, func(ctx context.Context) error {
		logger := log.New(os.Stderr, "[PROGRESS] ", log.LstdFlags)

		verifier, err := identity.LoadVerifierConfigFromEnv(time.Now)
		if err != nil {
			return fmt.Errorf("load id token verifier: %w", err)
		}

		authStore, err := authsqlite.Open(cfg.AuthDBPath)
		if err != nil {
			return fmt.Errorf("open auth store: %w", err)
		}
		defer func() { _ = authStore.Close() }()

		progressStore, err := progresssqlite.Open(cfg.ProgressDBPath)
		if err != nil {
			return fmt.Errorf("open progress store: %w", err)
		}
		defer func() { _ = progressStore.Close() }()

		service, err := app.NewService(app.ProfileGateway{Store: authStore}, progressStore, app.Config{
			MissionDepth:   cfg.MissionDepth,
			GatewayTimeout: cfg.GatewayTimeout,
			Logger:         logger,
		})
		if err != nil {
			return fmt.Errorf("build progress service: %w", err)
		}
		defer service.Close()

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		server := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewServer(verifier, service, logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()
		logger.Printf("listening on %s", addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
