package models

// PortfolioUpdate wraps a Portfolio submitted through the write endpoint.
// recalculate_immediately is accepted for API parity with the original
// producer-side client but is not read by the pipeline: every ingested
// snapshot is recalculated.
type PortfolioUpdate struct {
	Portfolio              Portfolio `json:"portfolio"`
	RecalculateImmediately bool      `json:"recalculate_immediately"`
}

// RiskMetricsResponse is the GET /risk/{id} response shape.
type RiskMetricsResponse struct {
	PortfolioID       string  `json:"portfolio_id"`
	AdvisorID         string  `json:"advisor_id"`
	RiskNumber        int     `json:"risk_number"`
	VaR95             float64 `json:"var_95"`
	ExpectedReturn    float64 `json:"expected_return"`
	Volatility        float64 `json:"volatility"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	CalculationTimeMs float64 `json:"calculation_time_ms"`
	Timestamp         float64 `json:"timestamp"`
	LastUpdate        string  `json:"last_update"`
}

// PortfolioStats is the GET /advisor/{id}/portfolios per-portfolio entry.
type PortfolioStats struct {
	PortfolioID       string `json:"portfolio_id"`
	LastUpdate        string `json:"last_update"`
	TotalCalculations int64  `json:"total_calculations"`
	CurrentRiskNumber int    `json:"current_risk_number"`
}

// SystemStatus is the GET /health response shape.
type SystemStatus struct {
	Status             string  `json:"status"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	TotalCalculations  int64   `json:"total_calculations"`
	AvgCalculationTime float64 `json:"avg_calculation_time_ms"`
	RedisConnected     bool    `json:"redis_connected"`
	KafkaConnected     bool    `json:"kafka_connected"`
	ActivePortfolios   int     `json:"active_portfolios"`
}

// RiskDistribution buckets portfolios by risk_number band.
type RiskDistribution struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// MetricsSummary is the GET /metrics/summary response shape.
type MetricsSummary struct {
	TotalPortfolios  int              `json:"total_portfolios"`
	AvgRiskNumber    float64          `json:"avg_risk_number"`
	TotalValueAtRisk float64          `json:"total_value_at_risk"`
	HighRiskCount    int              `json:"high_risk_count"`
	RiskDistribution RiskDistribution `json:"risk_distribution"`
}

// ErrorResponse is the standard error envelope returned by the API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}
