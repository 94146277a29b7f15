package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/eudai-lab/eudaimon/pkg/cli/config"
	httpctrl "github.com/eudai-lab/eudaimon/pkg/controller/http"
	"github.com/eudai-lab/eudaimon/pkg/usecase"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var libraryCfg config.Library
	var retrievalCfg config.Retrieval
	var privacyCfg config.Privacy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("EUDAIMON_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, libraryCfg.Flags()...)
	flags = append(flags, retrievalCfg.Flags()...)
	flags = append(flags, privacyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llm == nil {
				logging.Default().Info("Gemini not configured, generative stages run deterministic paths")
			}

			lib, err := libraryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load content library")
			}

			index, err := retrievalCfg.Configure(ctx, lib, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to build retrieval index")
			}

			ucOpts := []usecase.Option{
				usecase.WithRedactor(privacyCfg.Configure()),
				usecase.WithTopK(retrievalCfg.TopK()),
			}
			if llm != nil {
				ucOpts = append(ucOpts, usecase.WithLLM(llm))
			}
			uc := usecase.New(repo, lib, index, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
