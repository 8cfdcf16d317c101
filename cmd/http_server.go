package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/mercado-facil/api"
	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/auth"
	"github.com/frahmantamala/mercado-facil/internal/report"
	"github.com/frahmantamala/mercado-facil/internal/transport"
	"github.com/frahmantamala/mercado-facil/internal/transport/rest"
	"github.com/frahmantamala/mercado-facil/internal/transport/swagger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

func startHTTPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close(context.Background())

	router, err := setupRoutes(ctx, deps)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server",
			"address", addr,
			"env", cfg.Env,
			"store", cfg.Store.Driver,
			"permission_cache", cfg.PermissionCache.Driver)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	if _, err := swagger.Load(ctx, api.Spec); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	verifier, err := auth.NewTokenVerifier(&deps.Config.Security)
	if err != nil {
		return nil, fmt.Errorf("failed to build token verifier: %w", err)
	}

	base := transport.NewBaseHandler(deps.Logger)
	authService := auth.NewService(verifier, deps.AdminUserService, deps.Engine, deps.Logger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:         rest.NewHealthHandler(deps.HealthChecks()),
		Auth:           auth.NewHandler(base, authService),
		AdminUser:      adminuser.NewHandler(base, deps.AdminUserService),
		Report:         report.NewHandler(base, deps.ReportService),
		Permissions:    deps.Engine,
		Spec:           api.Spec,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
	}, deps.Logger)
	return router, nil
}
