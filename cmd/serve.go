package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/api/handlers"
	"github.com/linesmerrill/police-case-api/api/scheduler"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		inMemory, _ := cmd.Flags().GetBool("memory")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := handlers.App{Config: conf}
		if err := a.Initialize(ctx, inMemory); err != nil { //initialize database and router
			return err
		}
		defer a.Close(context.Background())

		var locker scheduler.Locker
		if client := a.Redis(); client != nil {
			locker = scheduler.NewRedisLocker(client)
		}
		jobs := scheduler.NewScheduler(conf.Scheduler, a.Services.Payments, locker)
		if err := jobs.Start(); err != nil {
			return err
		}
		defer jobs.Stop()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%v", conf.Server.Port),
			Handler:           a.Router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errs := make(chan error, 1)
		go func() {
			errs <- srv.ListenAndServe()
		}()
		zap.S().Infow("police-case-api is up and running",
			"port", conf.Server.Port,
			"url", conf.Server.BaseURL,
		)

		select {
		case err := <-errs:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		zap.S().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().Bool("memory", false, "use the in-memory store instead of mongodb")
}
