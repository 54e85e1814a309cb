// Command risk-pipeline consumes portfolio snapshots from the ingress
// topic, computes risk metrics, writes them to the cache, and republishes
// to the egress topic.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DimaJoyti/riskpulse/internal/bus"
	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/config"
	"github.com/DimaJoyti/riskpulse/internal/pipeline"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "risk-pipeline",
	Short: "Ingests portfolio snapshots and computes behavioral risk metrics",
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

	producer, err := bus.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.RetryMax,
		int(cfg.Kafka.ProducerFlush.Milliseconds()), true)
	if err != nil {
		return fmt.Errorf("creating producer: %w", err)
	}
	defer producer.Close()

	p, err := pipeline.New(cfg, logger, c, producer)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	healthMux.Handle("/metrics", promhttp.Handler())
	healthServer := &http.Server{Addr: ":8082", Handler: healthMux}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	logger.Info("pipeline started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("input_topic", cfg.Kafka.InputTopic),
		zap.String("output_topic", cfg.Kafka.OutputTopic))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, draining")
	cancel()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Shutdown.DrainTimeout)
	defer drainCancel()
	p.Stop(drainCtx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Shutdown.DrainTimeout)
	defer shutdownCancel()
	_ = healthServer.Shutdown(shutdownCtx)

	logger.Info("pipeline stopped")
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
