package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DimaJoyti/riskpulse/internal/models"
	"github.com/DimaJoyti/riskpulse/internal/telemetry"
)

// sseHandler implements sarama.ConsumerGroupHandler, forwarding every
// egress message (optionally filtered by portfolio_id) onto events.
type sseHandler struct {
	portfolioFilter string
	events          chan models.RiskResult
}

func (h *sseHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *sseHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *sseHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			var result models.RiskResult
			if err := json.Unmarshal(msg.Value, &result); err != nil {
				session.MarkMessage(msg, "")
				continue
			}

			if h.portfolioFilter == "" || result.PortfolioID == h.portfolioFilter {
				select {
				case h.events <- result:
				default:
					// slow reader, drop rather than block the consumer
				}
			}
			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleStreamRiskUpdates streams egress risk results as server-sent
// events. Each connection opens an ephemeral consumer group (a fresh
// random group id) so it reads starting from the latest offset and never
// competes with other consumers for partitions; the group is torn down
// when the client disconnects.
func (s *Server) handleStreamRiskUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	portfolioFilter := r.URL.Query().Get("portfolio_id")

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	groupID := "riskpulse-sse-" + uuid.NewString()
	group, err := sarama.NewConsumerGroup(s.cfg.Kafka.Brokers, groupID, cfg)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "bus unavailable", err.Error())
		return
	}
	defer group.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	handler := &sseHandler{portfolioFilter: portfolioFilter, events: make(chan models.RiskResult, 32)}

	go func() {
		for {
			if err := group.Consume(ctx, []string{s.cfg.Kafka.OutputTopic}, handler); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("sse consumer group error", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	telemetry.SSEActiveConnections.Inc()
	defer telemetry.SSEActiveConnections.Dec()

	for {
		select {
		case <-r.Context().Done():
			return

		case result := <-handler.events:
			data, err := json.Marshal(result)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
