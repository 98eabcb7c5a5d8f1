package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/payroll-employer/docs"
	"github.com/AlexZinkM/payroll-employer/internal/api"
	"github.com/AlexZinkM/payroll-employer/internal/handler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the employer HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           api.SetupRouter(handler.NewPayrollHandler(a.employer, logger), logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/index.html"))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return a.store.Watch(gctx, cfg.PollInterval)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.employer.Disconnect(shutdownCtx)
			return srv.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		logger.Info("server stopped")
		return err
	},
}
