// Command risk-api serves the read-mostly HTTP query and streaming API
// over the risk cache, and accepts portfolio updates for republishing to
// the ingress topic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DimaJoyti/riskpulse/internal/api"
	"github.com/DimaJoyti/riskpulse/internal/bus"
	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "risk-api",
	Short: "Serves the portfolio risk query and streaming API",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (optional, env vars always apply)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := initLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	defer c.Close()

	producer, err := bus.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID+"-api", cfg.Kafka.RetryMax,
		int(cfg.Kafka.ProducerFlush.Milliseconds()), false)
	if err != nil {
		logger.Warn("producer unavailable, POST /portfolio/update will fail until restart", zap.Error(err))
	}
	if producer != nil {
		defer producer.Close()
	}

	server := api.New(cfg, logger, c, producer)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}()
	logger.Info("risk-api started", zap.String("addr", cfg.HTTP.Addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.DrainTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("error during http server shutdown", zap.Error(err))
	}

	logger.Info("risk-api stopped")
	return nil
}

func initLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
