// Command userapi serves the user CRUD API.
//
//	userapi            start the HTTP server
//	userapi openapi    print the OpenAPI document and exit
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/userapi/internal/config"
	"github.com/deppfellow/userapi/internal/handler"
	"github.com/deppfellow/userapi/internal/lib/utils"
	"github.com/deppfellow/userapi/internal/logger"
	"github.com/deppfellow/userapi/internal/repository"
	"github.com/deppfellow/userapi/internal/router"
	"github.com/deppfellow/userapi/internal/server"
	"github.com/deppfellow/userapi/internal/service"
)

// DefaultContextTimeout bounds graceful shutdown.
const DefaultContextTimeout = 30 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           config.ServiceName,
		Short:         "REST API over user records stored in MongoDB",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := router.Document()
			if err != nil {
				return err
			}
			return utils.WriteJSON(cmd.OutOrStdout(), doc)
		},
	})

	return root
}

func serve(parent context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		bootstrap := logger.NewLogger(cfg.Observability)
		bootstrap.Error().Err(err).Msg("failed to initialize New Relic")
		return err
	}
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)

	r, _, err := router.NewRouter(srv, handlers)
	if err != nil {
		log.Error().Err(err).Msg("failed to build router")
		return err
	}

	srv.SetupHTTPServer(r)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
		defer cancel()
		return errors.Join(err, srv.Shutdown(shutdownCtx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
