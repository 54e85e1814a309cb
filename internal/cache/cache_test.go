package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DimaJoyti/riskpulse/internal/models"
)

func TestFormatAndParseResult_RoundTrip(t *testing.T) {
	// Arrange
	result := models.RiskResult{
		PortfolioID:        "p1",
		AdvisorID:          "a1",
		RiskNumber:         62,
		VaR95:              1234.56,
		ExpectedReturn:     0.112,
		Volatility:         0.187,
		SharpeRatio:        0.45,
		DownsidePercentage: -12.3,
		PortfolioBeta:      1.05,
		DownsideCapture:    105,
		CalculationTimeMs:  2.5,
		Timestamp:          1710000000.123,
	}

	fields := map[string]string{
		"portfolio_id":        result.PortfolioID,
		"advisor_id":          result.AdvisorID,
		"risk_number":         "62",
		"var_95":              formatFloat(result.VaR95),
		"expected_return":     formatFloat(result.ExpectedReturn),
		"volatility":          formatFloat(result.Volatility),
		"sharpe_ratio":        formatFloat(result.SharpeRatio),
		"downside_percentage": formatFloat(result.DownsidePercentage),
		"portfolio_beta":      formatFloat(result.PortfolioBeta),
		"downside_capture":    formatFloat(result.DownsideCapture),
		"calculation_time_ms": formatFloat(result.CalculationTimeMs),
		"timestamp":           formatFloat(result.Timestamp),
	}

	// Act
	parsed, err := parseResult(fields)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, result, parsed)
}

func TestParseResult_MissingRiskNumberErrors(t *testing.T) {
	// Act
	_, err := parseResult(map[string]string{"portfolio_id": "p1"})

	// Assert
	assert.Error(t, err)
}
