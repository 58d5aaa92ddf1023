package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"autodiag/internal/api"
	"autodiag/internal/diagnose"
	"autodiag/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagnosis API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lockPath := filepath.Join(cfg.Paths.DataDir, "autodiag.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another autodiag server is already running")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release server lock", logging.Error(err))
				}
			}()

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			var recorder diagnose.Recorder
			if store != nil {
				defer store.Close()
				recorder = store
			}

			orchestrator, err := buildOrchestrator(cfg, logger, recorder)
			if err != nil {
				return err
			}

			if bind == "" {
				bind = cfg.Paths.APIBind
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(bind, orchestrator, logger)
			return server.ListenAndServe(runCtx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides configuration)")

	return cmd
}
