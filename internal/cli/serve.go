package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/server"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	gin.SetMode(a.cfg.GinMode)

	var aiService *services.AIService
	if a.cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel)
	} else {
		a.log.Warn("OPENAI_API_KEY not set, task drafting disabled")
	}

	authService, err := services.NewAuthService(a.cfg.Credentials, a.cfg.TokenSecret, a.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	router, err := server.NewRouter(server.Deps{
		Config: a.cfg,
		Log:    a.log,
		DB:     a.db,
		Store:  a.store,
		AI:     aiService,
		Auth:   authService,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr, "mode", a.cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}
