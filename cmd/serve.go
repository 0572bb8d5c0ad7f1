package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"journalclub/internal/httpserver"
	"journalclub/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fetch worker and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		engine, err := newEngine(cfg, log)
		if err != nil {
			return err
		}

		mgr := worker.NewManager(&worker.FetchWorker{
			Engine:   engine,
			Interval: cfg.FetchInterval(),
			Log:      log,
		})
		srv := httpserver.New(&cfg, engine, log)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Info("received signal, shutting down", zap.String("signal", s.String()))
			cancel()
		}()

		errc := make(chan error, 2)
		go func() { errc <- mgr.Start(ctx) }()
		go func() { errc <- srv.Start() }()
		log.Info("serving",
			zap.String("addr", cfg.Server.Addr),
			zap.String("fetch_interval", cfg.Feeds.FetchInterval))

		received := 0
		var first error
		select {
		case err := <-errc:
			received++
			first = err
			cancel()
		case <-ctx.Done():
		}

		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()
		if err := srv.Stop(shutCtx); err != nil && first == nil {
			first = err
		}
		for ; received < 2; received++ {
			if err := <-errc; err != nil && first == nil {
				first = err
			}
		}
		return first
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
