package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ironbook/internal/api"
	"ironbook/internal/book"
	"ironbook/internal/config"
	"ironbook/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

func main() {
	cfg := config.Load()
	configureLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink := book.NewInMemoryLog()
	ob := book.New(sink)
	m := metrics.New(prometheus.DefaultRegisterer)
	srv := api.New(cfg.ListenAddr, ob, sink, m)

	t, ctx := tomb.WithContext(ctx)
	t.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
		httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}

		errCh := make(chan error, 1)
		go func() { errCh <- httpSrv.ListenAndServe() }()

		select {
		case <-t.Dying():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}
	})

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func configureLogging(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
