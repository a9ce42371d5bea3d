package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/themis/pkg/cli/config"
	httpctrl "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/service/worker"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var allowOrigin string
	var wizardIdle time.Duration
	var sweepInterval time.Duration
	var appCfg config.App
	var repoCfg config.Repository
	var storageCfg config.Storage
	var authCfg config.Auth
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":4000",
			Sources:     cli.EnvVars("THEMIS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "allow-origin",
			Usage:       "Value of Access-Control-Allow-Origin for the web client",
			Value:       "*",
			Sources:     cli.EnvVars("THEMIS_ALLOW_ORIGIN"),
			Destination: &allowOrigin,
		},
		&cli.DurationFlag{
			Name:        "wizard-idle-timeout",
			Usage:       "Close risk assessment wizards unused for this long",
			Category:    "Wizard",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("THEMIS_WIZARD_IDLE_TIMEOUT"),
			Destination: &wizardIdle,
		},
		&cli.DurationFlag{
			Name:        "wizard-sweep-interval",
			Usage:       "Interval of the idle wizard sweep",
			Category:    "Wizard",
			Value:       time.Minute,
			Sources:     cli.EnvVars("THEMIS_WIZARD_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"addr", addr,
				"repository", repoCfg,
				"storage", storageCfg,
				"auth", authCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			appConfig, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			store, closeStorage, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize file storage")
			}
			defer closeStorage()

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			uc := usecase.New(repo,
				usecase.WithRiskConfig(appConfig.ToDomainRiskConfig()),
				usecase.WithStorage(store),
				usecase.WithAuth(authCfg.Configure()...),
				usecase.WithMetrics(registry),
			)

			sweeper := worker.NewWizardSweeper(uc.Wizard, sweepInterval, wizardIdle)
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start wizard sweeper")
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc,
					httpctrl.WithMetrics(registry),
					httpctrl.WithAllowOrigin(allowOrigin),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			var runErr error
			select {
			case runErr = <-errCh:
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logging.Default().Info("Context cancelled, shutting down")
			}

			sweeper.Stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
				runErr = goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// Wizards still open hold timers and in-flight loads
			uc.Wizard.CloseAll(shutdownCtx)

			if runErr == nil {
				logging.Default().Info("Server shutdown completed")
			}
			return runErr
		},
	}
}
