package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shse/playground/playground"
	"github.com/shse/playground/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Port           uint16        `required:"true"`
	MetricsAddress string        `split_words:"true" default:"0.0.0.0:8080"`
	FrameInterval  time.Duration `split_words:"true" default:"50ms"`
}

func main() {
	logger, err := zap.NewProduction()

	if err != nil {
		log.Fatal(err.Error())
	}

	defer logger.Sync()

	var config Config

	err = envconfig.Process("playground", &config)

	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	signals := make(chan os.Signal, 1)

	signal.Notify(signals,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-signals
		logger.Info("Shutting down")
		cancel()
	}()

	server := transport.NewServer(logger, prometheus.DefaultRegisterer, config.FrameInterval)
	game := playground.New(logger, server, time.Now)

	prometheus.MustRegister(game.Collectors()...)

	if err := run(ctx, logger, config, server, game); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, config Config, server *transport.Server, game *playground.Playground) error {
	http.Handle("/metrics", promhttp.Handler())

	metrics := &http.Server{Addr: config.MetricsAddress}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Profiler is on", zap.String("url", fmt.Sprintf("http://%s/debug/pprof", config.MetricsAddress)))
		logger.Info("Prometheus metrics are on", zap.String("url", fmt.Sprintf("http://%s/metrics", config.MetricsAddress)))

		if err := metrics.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		return metrics.Close()
	})

	group.Go(func() error {
		return server.Run(ctx, fmt.Sprintf("0.0.0.0:%d", config.Port), game)
	})

	return group.Wait()
}
