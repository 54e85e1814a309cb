package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/models"
)

const (
	riskBandLow       = 30
	riskBandHigh      = 70
	highRiskThreshold = 70
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, models.ErrorResponse{
		Error:     message,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func toRiskMetricsResponse(r models.RiskResult) models.RiskMetricsResponse {
	return models.RiskMetricsResponse{
		PortfolioID:       r.PortfolioID,
		AdvisorID:         r.AdvisorID,
		RiskNumber:        r.RiskNumber,
		VaR95:             r.VaR95,
		ExpectedReturn:    r.ExpectedReturn,
		Volatility:        r.Volatility,
		SharpeRatio:       r.SharpeRatio,
		CalculationTimeMs: r.CalculationTimeMs,
		Timestamp:         r.Timestamp,
		LastUpdate:        unixToRFC3339(r.Timestamp),
	}
}

func unixToRFC3339(unix float64) string {
	return time.Unix(int64(unix), 0).UTC().Format(time.RFC3339)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "riskpulse",
		"endpoints": []string{
			"/health",
			"/risk/{portfolio_id}",
			"/portfolios/at-risk",
			"/advisor/{advisor_id}/portfolios",
			"/metrics/summary",
			"/portfolio/update",
			"/stream/risk-updates",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	redisOK := s.cache.Health(ctx) == nil
	kafkaOK := s.producer != nil

	stats, _ := s.cache.GlobalMetrics(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	if !redisOK || !kafkaOK {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	var avgTime float64
	if stats.TotalCalculations > 0 {
		avgTime = stats.TotalProcessingTimeMs / float64(stats.TotalCalculations)
	}

	writeJSON(w, httpStatus, models.SystemStatus{
		Status:             status,
		UptimeSeconds:      time.Since(s.startTime).Seconds(),
		TotalCalculations:  stats.TotalCalculations,
		AvgCalculationTime: avgTime,
		RedisConnected:     redisOK,
		KafkaConnected:     kafkaOK,
	})
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	portfolioID := mux.Vars(r)["portfolio_id"]

	result, err := s.cache.GetResult(r.Context(), portfolioID)
	if err == cache.ErrNotFound {
		writeError(w, http.StatusNotFound, "portfolio not found", "no cached risk result for "+portfolioID)
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cache unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toRiskMetricsResponse(result))
}

func (s *Server) handleAtRisk(w http.ResponseWriter, r *http.Request) {
	threshold := highRiskThreshold
	if v := r.URL.Query().Get("risk_threshold"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid risk_threshold", err.Error())
			return
		}
		threshold = parsed
	}

	var results []models.RiskMetricsResponse
	err := s.cache.ScanAll(r.Context(), func(res models.RiskResult) error {
		if res.RiskNumber >= threshold {
			results = append(results, toRiskMetricsResponse(res))
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cache scan failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAdvisorPortfolios(w http.ResponseWriter, r *http.Request) {
	advisorID := mux.Vars(r)["advisor_id"]
	ctx := r.Context()

	var out []models.PortfolioStats
	err := s.cache.ScanAll(ctx, func(res models.RiskResult) error {
		if res.AdvisorID != advisorID {
			return nil
		}
		count, _ := s.cache.CalculationCount(ctx, res.PortfolioID)
		out = append(out, models.PortfolioStats{
			PortfolioID:       res.PortfolioID,
			LastUpdate:        unixToRFC3339(res.Timestamp),
			TotalCalculations: count,
			CurrentRiskNumber: res.RiskNumber,
		})
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cache scan failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	var (
		count    int
		riskSum  float64
		varSum   float64
		highRisk int
		dist     models.RiskDistribution
	)

	err := s.cache.ScanAll(r.Context(), func(res models.RiskResult) error {
		count++
		riskSum += float64(res.RiskNumber)
		varSum += res.VaR95

		switch {
		case res.RiskNumber < riskBandLow:
			dist.Low++
		case res.RiskNumber < riskBandHigh:
			dist.Moderate++
		default:
			dist.High++
		}

		if res.RiskNumber >= highRiskThreshold {
			highRisk++
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cache scan failed", err.Error())
		return
	}

	var avgRisk float64
	if count > 0 {
		avgRisk = riskSum / float64(count)
	}

	writeJSON(w, http.StatusOK, models.MetricsSummary{
		TotalPortfolios:  count,
		AvgRiskNumber:    avgRisk,
		TotalValueAtRisk: varSum,
		HighRiskCount:    highRisk,
		RiskDistribution: dist,
	})
}

func (s *Server) handlePortfolioUpdate(w http.ResponseWriter, r *http.Request) {
	var update models.PortfolioUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := update.Portfolio.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid portfolio", err.Error())
		return
	}

	payload, err := json.Marshal(update.Portfolio)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encoding portfolio", err.Error())
		return
	}

	if s.producer == nil {
		writeError(w, http.StatusServiceUnavailable, "bus unavailable", "")
		return
	}

	inputTopic := s.cfg.Kafka.InputTopic
	if _, _, err := s.producer.Publish(inputTopic, 0, []byte(update.Portfolio.ID), payload); err != nil {
		writeError(w, http.StatusServiceUnavailable, "publish failed", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"portfolio_id":            update.Portfolio.ID,
		"recalculate_immediately": update.RecalculateImmediately,
		"accepted":                true,
	})
}
