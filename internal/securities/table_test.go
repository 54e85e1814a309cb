package securities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownSymbolReturnsTableValue(t *testing.T) {
	// Act
	c := Lookup("AAPL")

	// Assert
	assert.Equal(t, 0.22, c.Volatility)
	assert.Equal(t, 0.15, c.ExpectedReturn)
	assert.Equal(t, 1.2, c.Beta)
}

func TestLookup_TechHeuristicMatches(t *testing.T) {
	// Act
	c := Lookup("CLOUDTECH")

	// Assert
	assert.Equal(t, Characteristics{0.30, 0.12, 1.3}, c)
}

func TestLookup_BankHeuristicMatches(t *testing.T) {
	// Act
	c := Lookup("FIRSTBANK")

	// Assert
	assert.Equal(t, Characteristics{0.22, 0.09, 1.1}, c)
}

func TestLookup_UnknownSymbolReturnsGenericDefault(t *testing.T) {
	// Act
	c := Lookup("ZZZZ")

	// Assert
	assert.Equal(t, genericDefault, c)
}
