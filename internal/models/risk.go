package models

// RiskResult is the output of a single portfolio risk computation: the
// fields written to the cache, republished on the egress topic, and served
// by the query API.
type RiskResult struct {
	PortfolioID        string  `json:"portfolio_id"`
	AdvisorID          string  `json:"advisor_id"`
	RiskNumber         int     `json:"risk_number"`
	VaR95              float64 `json:"var_95"`
	ExpectedReturn     float64 `json:"expected_return"`
	Volatility         float64 `json:"volatility"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	DownsidePercentage float64 `json:"downside_percentage"`
	PortfolioBeta      float64 `json:"portfolio_beta"`
	DownsideCapture    float64 `json:"downside_capture"`
	CalculationTimeMs  float64 `json:"calculation_time_ms"`
	Timestamp          float64 `json:"timestamp"`
}
