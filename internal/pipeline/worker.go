// Package pipeline wires the bus, cache, risk, and perf packages into the
// partition-affine ingestion loop: one worker per ingress partition,
// sequential processing, manual offset commit gated on both the egress
// produce and the cache write attempt.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/DimaJoyti/riskpulse/internal/bus"
	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/models"
	"github.com/DimaJoyti/riskpulse/internal/perf"
	"github.com/DimaJoyti/riskpulse/internal/risk"
	"github.com/DimaJoyti/riskpulse/internal/telemetry"
)

// consumerGroup is the offset-manager group id the pipeline commits
// manual offsets under. It never joins a rebalancing group; the group id
// only scopes where OffsetManager stores committed offsets.
const consumerGroup = "riskpulse-pipeline"

// worker owns a single ingress partition end to end: consume, decode,
// compute, produce to egress (on the same partition index), write to
// cache, commit offset.
type worker struct {
	partition   int32
	consumer    *bus.PartitionConsumer
	offsets     *bus.OffsetTracker
	producer    *bus.Producer
	cache       *cache.Cache
	tracker     *perf.Tracker
	logger      *zap.Logger
	inputTopic  string
	outputTopic string
	logInterval int
}

func (w *worker) run(ctx context.Context) {
	messages := w.consumer.Messages()
	errs := w.consumer.Errors()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Error("partition consumer error",
				zap.Int32("partition", w.partition), zap.Error(err))

		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !w.handle(ctx, msg) {
				return
			}
		}
	}
}

// handle processes one message and reports whether the worker may go on
// to the next one; it returns false when the egress produce failed.
func (w *worker) handle(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	start := time.Now()
	partitionLabel := fmt.Sprintf("%d", w.partition)
	telemetry.MessagesConsumedTotal.WithLabelValues(partitionLabel).Inc()

	var portfolio models.Portfolio
	if err := json.Unmarshal(msg.Value, &portfolio); err != nil {
		w.logger.Warn("discarding undecodable message",
			zap.Int32("partition", w.partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		telemetry.MessagesFailedTotal.WithLabelValues("decode").Inc()
		w.offsets.MarkOffset(msg.Offset)
		return true
	}

	if err := portfolio.Validate(); err != nil {
		w.logger.Warn("discarding invalid portfolio",
			zap.String("portfolio_id", portfolio.ID), zap.Error(err))
		telemetry.MessagesFailedTotal.WithLabelValues("validation").Inc()
		w.offsets.MarkOffset(msg.Offset)
		return true
	}

	result := risk.Calculate(portfolio, float64(time.Now().UnixNano())/1e9, 0)
	result.CalculationTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	payload, err := json.Marshal(result)
	if err != nil {
		w.logger.Error("marshaling risk result", zap.String("portfolio_id", portfolio.ID), zap.Error(err))
		telemetry.MessagesFailedTotal.WithLabelValues("compute").Inc()
		w.offsets.MarkOffset(msg.Offset)
		return true
	}

	if _, _, err := w.producer.Publish(w.outputTopic, w.partition, msg.Key, payload); err != nil {
		w.logger.Error("publishing risk result failed, halting worker without committing offset",
			zap.String("portfolio_id", portfolio.ID), zap.Error(err))
		return false
	}

	if err := w.cache.WriteResult(ctx, result); err != nil {
		w.logger.Error("writing cache entry",
			zap.String("portfolio_id", portfolio.ID), zap.Error(err))
		telemetry.CacheErrorsTotal.WithLabelValues("write").Inc()
	}

	// Offset advances once the egress produce has been acknowledged and
	// the cache write has been attempted, whether or not the cache write
	// succeeded.
	w.offsets.MarkOffset(msg.Offset)

	telemetry.MessagesProcessedTotal.WithLabelValues(partitionLabel).Inc()
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	telemetry.ProcessingDuration.Observe(elapsed)
	w.tracker.Record(elapsed)

	if stats, ok := w.tracker.ShouldLog(w.logInterval); ok {
		w.logger.Info("pipeline performance",
			zap.Int64("messages_processed", stats.MessagesProcessed),
			zap.Float64("throughput_per_second", stats.ThroughputPerSecond),
			zap.Float64("recent_avg_latency_ms", stats.RecentAvgLatencyMs))
	}
	return true
}
