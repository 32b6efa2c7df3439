package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/trek/pkg/server"
	"github.com/m-mizutani/trek/pkg/utils/logging"
)

const shutdownGrace = 10 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TREK_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, authFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Optional .env for local development
			_ = godotenv.Load()

			ctx = cfg.loggerContext(ctx)
			logger := logging.From(ctx)

			identity, err := cfg.newIdentity(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			srv := &http.Server{
				Addr:    addr,
				Handler: server.New(identity, repo, cfg.newLLM()).Handler(),
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "server error")
				}
			case <-ctx.Done():
				logger.Info("shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shut down server")
				}
			}

			return nil
		},
	}
}
