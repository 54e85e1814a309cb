package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DimaJoyti/riskpulse/internal/models"
)

func singleStockPortfolio(symbol string, tolerance models.RiskTolerance) models.Portfolio {
	return models.Portfolio{
		ID:        "p1",
		AdvisorID: "a1",
		ClientID:  "c1",
		Positions: []models.Position{
			{Symbol: symbol, Quantity: 100, Price: 100, MarketValue: 10000, Weight: 100, Sector: models.SectorTechnology},
		},
		TotalValue:    10000,
		RiskTolerance: tolerance,
		AccountType:   models.AccountTypeIndividual,
	}
}

func TestCalculate_RiskNumberWithinBounds(t *testing.T) {
	// Arrange
	p := singleStockPortfolio("TSLA", models.RiskToleranceModerate)

	// Act
	result := Calculate(p, 1710000000, 1.5)

	// Assert
	assert.GreaterOrEqual(t, result.RiskNumber, minRiskNumber)
	assert.LessOrEqual(t, result.RiskNumber, maxRiskNumber)
	assert.Equal(t, "p1", result.PortfolioID)
	assert.Equal(t, "a1", result.AdvisorID)
}

func TestCalculate_ConservativeIncreasesRiskNumber(t *testing.T) {
	// Arrange
	moderate := singleStockPortfolio("NVDA", models.RiskToleranceModerate)
	conservative := singleStockPortfolio("NVDA", models.RiskToleranceConservative)

	// Act
	moderateResult := Calculate(moderate, 1710000000, 1.0)
	conservativeResult := Calculate(conservative, 1710000000, 1.0)

	// Assert
	assert.GreaterOrEqual(t, conservativeResult.RiskNumber, moderateResult.RiskNumber)
}

func TestCalculate_AggressiveDecreasesRiskNumber(t *testing.T) {
	// Arrange
	moderate := singleStockPortfolio("NVDA", models.RiskToleranceModerate)
	aggressive := singleStockPortfolio("NVDA", models.RiskToleranceAggressive)

	// Act
	moderateResult := Calculate(moderate, 1710000000, 1.0)
	aggressiveResult := Calculate(aggressive, 1710000000, 1.0)

	// Assert
	assert.LessOrEqual(t, aggressiveResult.RiskNumber, moderateResult.RiskNumber)
}

func TestCalculate_DownsidePercentageIsNonPositive(t *testing.T) {
	// Arrange
	p := singleStockPortfolio("JNJ", models.RiskToleranceModerate)

	// Act
	result := Calculate(p, 1710000000, 1.0)

	// Assert
	assert.LessOrEqual(t, result.DownsidePercentage, 0.0)
}

func TestCalculate_VaRIsNonNegative(t *testing.T) {
	// Arrange
	p := singleStockPortfolio("AMD", models.RiskToleranceModerate)

	// Act
	result := Calculate(p, 1710000000, 1.0)

	// Assert
	assert.GreaterOrEqual(t, result.VaR95, 0.0)
}

func TestCalculate_DiversifiedPortfolioHasLowerVolatilityThanWeightedAverage(t *testing.T) {
	// Arrange: two uncorrelated-ish sectors should diversify away some risk
	p := models.Portfolio{
		ID:        "p2",
		AdvisorID: "a1",
		ClientID:  "c1",
		Positions: []models.Position{
			{Symbol: "TSLA", Quantity: 50, Price: 100, MarketValue: 5000, Weight: 50, Sector: models.SectorAutomotive},
			{Symbol: "JNJ", Quantity: 50, Price: 100, MarketValue: 5000, Weight: 50, Sector: models.SectorHealthcare},
		},
		TotalValue:    10000,
		RiskTolerance: models.RiskToleranceModerate,
		AccountType:   models.AccountTypeIndividual,
	}

	// Act
	result := Calculate(p, 1710000000, 1.0)

	// Assert: weighted average of the two standalone volatilities (0.50, 0.14) is 0.32
	assert.Less(t, result.Volatility, 0.32)
}

func TestDownsidePercentageToRiskNumber_ZeroIsMinimum(t *testing.T) {
	assert.Equal(t, minRiskNumber, downsidePercentageToRiskNumber(0))
	assert.Equal(t, minRiskNumber, downsidePercentageToRiskNumber(5))
}

func TestDownsidePercentageToRiskNumber_DeepLossIsCapped(t *testing.T) {
	assert.Equal(t, maxRiskNumber, downsidePercentageToRiskNumber(-50))
}

func TestApplyRiskToleranceAdjustment_ModerateUnchanged(t *testing.T) {
	assert.Equal(t, 50, applyRiskToleranceAdjustment(50, models.RiskToleranceModerate))
}

func TestApplyRiskToleranceAdjustment_ConservativeCapsAtMax(t *testing.T) {
	assert.Equal(t, maxRiskNumber, applyRiskToleranceAdjustment(95, models.RiskToleranceConservative))
}

func TestApplyRiskToleranceAdjustment_AggressiveFloorsAtMin(t *testing.T) {
	assert.Equal(t, minRiskNumber, applyRiskToleranceAdjustment(21, models.RiskToleranceAggressive))
}
