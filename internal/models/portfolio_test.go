package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPortfolio() Portfolio {
	return Portfolio{
		ID:        "p1",
		AdvisorID: "a1",
		ClientID:  "c1",
		Positions: []Position{
			{Symbol: "AAPL", Quantity: 10, Price: 100, MarketValue: 1000, Weight: 50, Sector: SectorTechnology},
			{Symbol: "JNJ", Quantity: 10, Price: 100, MarketValue: 1000, Weight: 50, Sector: SectorHealthcare},
		},
		TotalValue:    2000,
		RiskTolerance: RiskToleranceModerate,
		AccountType:   AccountTypeIndividual,
	}
}

func TestPortfolio_Validate_Valid(t *testing.T) {
	// Arrange
	p := validPortfolio()

	// Act
	err := p.Validate()

	// Assert
	assert.NoError(t, err)
}

func TestPortfolio_Validate_NoPositions(t *testing.T) {
	// Arrange
	p := validPortfolio()
	p.Positions = nil

	// Act
	err := p.Validate()

	// Assert
	assert.Error(t, err)
}

func TestPortfolio_Validate_TotalValueMismatch(t *testing.T) {
	// Arrange
	p := validPortfolio()
	p.TotalValue = 5000

	// Act
	err := p.Validate()

	// Assert
	assert.Error(t, err)
}

func TestPortfolio_Validate_WeightsDontSumTo100(t *testing.T) {
	// Arrange
	p := validPortfolio()
	p.Positions[0].Weight = 10
	p.Positions[1].Weight = 10

	// Act
	err := p.Validate()

	// Assert
	assert.Error(t, err)
}

func TestPortfolio_Validate_UnrecognizedRiskTolerance(t *testing.T) {
	// Arrange
	p := validPortfolio()
	p.RiskTolerance = "YOLO"

	// Act
	err := p.Validate()

	// Assert
	assert.Error(t, err)
}

func TestPosition_Validate_MarketValueToleranceAllowsRounding(t *testing.T) {
	// Arrange: quantity*price = 1000.004, within the 0.01 tolerance of 1000
	pos := Position{Symbol: "AAPL", Quantity: 10.00004, Price: 100, MarketValue: 1000, Weight: 100, Sector: SectorTechnology}

	// Act
	err := pos.Validate()

	// Assert
	assert.NoError(t, err)
}

func TestPosition_Validate_NegativeQuantity(t *testing.T) {
	// Arrange
	pos := Position{Symbol: "AAPL", Quantity: -1, Price: 100, MarketValue: -100, Weight: 10, Sector: SectorTechnology}

	// Act
	err := pos.Validate()

	// Assert
	assert.Error(t, err)
}
