// Package risk implements the pure, deterministic portfolio risk
// calculation at the center of the pipeline: position weights and
// security characteristics go in, a RiskResult comes out.
package risk

import (
	"math"

	"github.com/DimaJoyti/riskpulse/internal/models"
	"github.com/DimaJoyti/riskpulse/internal/securities"
)

const (
	zScore                     = 1.64
	riskFreeRate               = 0.03
	minRiskNumber              = 20
	maxRiskNumber              = 100
	conservativeAdjustment     = 1.1
	aggressiveAdjustment       = 0.9
	sameSectorCorrelation      = 0.7
	differentSectorCorrelation = 0.3
	betaCorrelationAdjustment  = 0.1
	minCorrelation             = 0.1
	maxCorrelation             = 0.95
)

// Calculate computes the full RiskResult for a validated portfolio.
// nowUnix is the Unix timestamp (seconds, fractional) to stamp the result
// with; calculationTimeMs is the elapsed wall time the caller measured for
// this computation.
func Calculate(p models.Portfolio, nowUnix float64, calculationTimeMs float64) models.RiskResult {
	n := len(p.Positions)
	weights := make([]float64, n)
	returns := make([]float64, n)
	volatilities := make([]float64, n)
	betas := make([]float64, n)

	for i, pos := range p.Positions {
		weights[i] = pos.Weight / 100.0
		chars := securities.Lookup(pos.Symbol)
		returns[i] = chars.ExpectedReturn
		volatilities[i] = chars.Volatility
		betas[i] = chars.Beta
	}

	var portfolioBeta float64
	for i := range weights {
		portfolioBeta += weights[i] * betas[i]
	}

	correlation := correlationMatrix(p.Positions, betas)
	portfolioReturn, portfolioVolatility, sharpeRatio := portfolioMetrics(weights, returns, volatilities, correlation)

	downsidePercentage := -zScore * portfolioVolatility * 100
	var95 := valueAtRisk(p.TotalValue, portfolioVolatility)

	riskNumber := downsidePercentageToRiskNumber(downsidePercentage)
	riskNumber = applyRiskToleranceAdjustment(riskNumber, p.RiskTolerance)

	downsideCapture := portfolioBeta * 100

	return models.RiskResult{
		PortfolioID:        p.ID,
		AdvisorID:          p.AdvisorID,
		RiskNumber:         riskNumber,
		VaR95:              var95,
		ExpectedReturn:     portfolioReturn,
		Volatility:         portfolioVolatility,
		SharpeRatio:        sharpeRatio,
		DownsidePercentage: downsidePercentage,
		PortfolioBeta:      portfolioBeta,
		DownsideCapture:    downsideCapture,
		CalculationTimeMs:  calculationTimeMs,
		Timestamp:          nowUnix,
	}
}

// correlationMatrix builds an n×n correlation matrix from sector
// membership and beta similarity between positions.
func correlationMatrix(positions []models.Position, betas []float64) [][]float64 {
	n := len(positions)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				corr[i][j] = 1.0
				continue
			}

			var base float64
			if positions[i].Sector == positions[j].Sector {
				base = sameSectorCorrelation
			} else {
				base = differentSectorCorrelation
			}

			betaDiff := math.Abs(betas[i] - betas[j])
			adjustment := -betaCorrelationAdjustment * math.Min(betaDiff, 1.0)

			corr[i][j] = math.Min(maxCorrelation, math.Max(minCorrelation, base+adjustment))
		}
	}

	return corr
}

// portfolioMetrics returns (expected return, volatility, Sharpe ratio).
func portfolioMetrics(weights, returns, volatilities []float64, correlation [][]float64) (float64, float64, float64) {
	var portfolioReturn float64
	for i := range weights {
		portfolioReturn += weights[i] * returns[i]
	}

	n := len(weights)
	var variance float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cov := volatilities[i] * volatilities[j] * correlation[i][j]
			variance += weights[i] * cov * weights[j]
		}
	}

	volatility := math.Sqrt(math.Max(variance, 0))

	var sharpe float64
	if volatility > 0 {
		sharpe = (portfolioReturn - riskFreeRate) / volatility
	}

	return portfolioReturn, volatility, sharpe
}

func valueAtRisk(totalValue, portfolioVolatility float64) float64 {
	downsidePercentage := -zScore * portfolioVolatility * 100
	return math.Abs(downsidePercentage / 100 * totalValue)
}

// downsidePercentageToRiskNumber maps a negative downside percentage onto
// an integer risk score in [20,100] via a piecewise linear/quadratic/linear
// curve: gentle near zero, steep in the middle, gentle again past -18%.
func downsidePercentageToRiskNumber(downsidePct float64) int {
	if downsidePct >= 0 {
		return minRiskNumber
	}

	downsideAbs := math.Abs(downsidePct)

	var riskNumber float64
	switch {
	case downsideAbs <= 2:
		riskNumber = minRiskNumber + (downsideAbs/2)*5
	case downsideAbs <= 18:
		normalized := (downsideAbs - 2) / 16
		riskNumber = 25 + normalized*normalized*60
	default:
		normalized := math.Min((downsideAbs-18)/12, 1)
		riskNumber = 85 + normalized*15
	}

	return int(math.Min(maxRiskNumber, math.Max(minRiskNumber, riskNumber)))
}

// applyRiskToleranceAdjustment nudges the base risk number to reflect
// behavioral perception: conservative investors perceive more risk,
// aggressive investors less, moderate investors unchanged.
func applyRiskToleranceAdjustment(riskNumber int, tolerance models.RiskTolerance) int {
	switch tolerance {
	case models.RiskToleranceConservative:
		adjusted := int(float64(riskNumber) * conservativeAdjustment)
		if adjusted > maxRiskNumber {
			return maxRiskNumber
		}
		return adjusted
	case models.RiskToleranceAggressive:
		adjusted := int(float64(riskNumber) * aggressiveAdjustment)
		if adjusted < minRiskNumber {
			return minRiskNumber
		}
		return adjusted
	default:
		return riskNumber
	}
}
