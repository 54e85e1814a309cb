package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/DimaJoyti/riskpulse/internal/bus"
	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/config"
	"github.com/DimaJoyti/riskpulse/internal/perf"
	"github.com/DimaJoyti/riskpulse/internal/telemetry"
)

// Pipeline owns one worker per ingress partition plus the shared egress
// producer and cache client all workers publish/write through.
type Pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	cache    *cache.Cache
	producer *bus.Producer

	workers []*worker
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// New builds a Pipeline sized to the ingress topic's current partition
// count. Each worker opens its own PartitionConsumer and OffsetTracker;
// all workers share the Producer and Cache passed in.
func New(cfg *config.Config, logger *zap.Logger, c *cache.Cache, producer *bus.Producer) (*Pipeline, error) {
	partitions, err := bus.Partitions(cfg.Kafka.Brokers, cfg.Kafka.InputTopic)
	if err != nil {
		return nil, fmt.Errorf("discovering partitions: %w", err)
	}

	p := &Pipeline{cfg: cfg, logger: logger, cache: c, producer: producer}

	for _, partition := range partitions {
		offsets, err := bus.NewOffsetTracker(cfg.Kafka.Brokers, consumerGroup, cfg.Kafka.InputTopic, partition)
		if err != nil {
			p.closeWorkers()
			return nil, fmt.Errorf("opening offset tracker for partition %d: %w", partition, err)
		}

		consumer, err := bus.NewPartitionConsumer(cfg.Kafka.Brokers, cfg.Kafka.InputTopic, partition, offsets.NextOffset())
		if err != nil {
			offsets.Close()
			p.closeWorkers()
			return nil, fmt.Errorf("opening partition consumer for partition %d: %w", partition, err)
		}

		p.workers = append(p.workers, &worker{
			partition:   partition,
			consumer:    consumer,
			offsets:     offsets,
			producer:    producer,
			cache:       c,
			tracker:     perf.NewWithWindow(cfg.Performance.WindowSize),
			logger:      logger.With(zap.Int32("partition", partition)),
			inputTopic:  cfg.Kafka.InputTopic,
			outputTopic: cfg.Kafka.OutputTopic,
			logInterval: cfg.Performance.LogInterval,
		})
	}

	return p, nil
}

// Start launches one goroutine per partition worker.
func (p *Pipeline) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	telemetry.PipelineRunning.Set(1)

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run(ctx)
		}(w)
	}
}

// Stop signals all workers to stop consuming and waits (up to drainTimeout)
// for in-flight message handling to finish, then closes every worker's
// consumer and offset tracker. The shared producer is not closed here; its
// owner closes it.
func (p *Pipeline) Stop(drainCtx context.Context) {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-drainCtx.Done():
		p.logger.Warn("drain timeout exceeded, closing workers regardless")
	}

	p.closeWorkers()
	telemetry.PipelineRunning.Set(0)
}

func (p *Pipeline) closeWorkers() {
	for _, w := range p.workers {
		if w.consumer != nil {
			if err := w.consumer.Close(); err != nil {
				p.logger.Warn("closing partition consumer", zap.Int32("partition", w.partition), zap.Error(err))
			}
		}
		if w.offsets != nil {
			if err := w.offsets.Close(); err != nil {
				p.logger.Warn("closing offset tracker", zap.Int32("partition", w.partition), zap.Error(err))
			}
		}
	}
}
