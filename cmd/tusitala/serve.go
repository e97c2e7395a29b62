package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dfryer1193/tusitala/blog/application"
	"github.com/dfryer1193/tusitala/internal/config"
	"github.com/dfryer1193/tusitala/internal/middleware"
	"github.com/dfryer1193/tusitala/internal/rest"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the publishing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			wp, err := ctx.wordpressClient()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close database")
				}
			}()

			if !wp.TestConnection(cmd.Context()) {
				log.Warn().Str("base_url", wp.BaseURL()).Msg("WordPress is not reachable yet; publishing will fail until it is")
			}

			publisher := application.NewPublishService(wp, st.assets, st.storage,
				application.WithPublicationRepository(st.publications),
				application.WithMigrationConcurrency(cfg.Publish.MigrationConcurrency),
			)

			router := newRouter(cfg, rest.Dependencies{
				Publisher:     publisher,
				Assets:        application.NewAssetService(st.assets, cfg.Publish.MaxAssetBytes),
				WordPress:     wp,
				Publications:  st.publications,
				MaxMediaBytes: cfg.Publish.MaxMediaBytes,
			})

			return serve(cmd.Context(), cfg.Server.Addr, router)
		},
	}
}

func newRouter(cfg *config.Config, deps rest.Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	router.MaxMultipartMemory = cfg.Publish.MaxAssetBytes

	router.Static("/uploads", filepath.Join(cfg.Server.PublicDir, "uploads"))
	rest.NewApi(router, deps)
	return router
}

// serve runs until ctx is cancelled or the process receives SIGINT/SIGTERM.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
