package models

import (
	"fmt"
	"math"
)

const (
	totalValueTolerance = 0.01
	weightSumTolerance  = 0.1
)

// Portfolio is a point-in-time snapshot of a client's holdings, as
// delivered on the ingress topic.
type Portfolio struct {
	ID            string        `json:"id"`
	AdvisorID     string        `json:"advisor_id"`
	ClientID      string        `json:"client_id"`
	Positions     []Position    `json:"positions"`
	TotalValue    float64       `json:"total_value"`
	Timestamp     float64       `json:"timestamp"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
	AccountType   AccountType   `json:"account_type"`
}

// Validate checks every Portfolio-level invariant plus each position's own
// invariants. Positions must be non-empty, total_value must match the sum
// of position market values within tolerance, and position weights must
// sum to ~100.
func (p Portfolio) Validate() error {
	verr := &ValidationError{}

	if p.ID == "" {
		verr.Add("id must not be empty")
	}
	if p.AdvisorID == "" {
		verr.Add("advisor_id must not be empty")
	}
	if p.ClientID == "" {
		verr.Add("client_id must not be empty")
	}
	if len(p.Positions) == 0 {
		verr.Add("positions must contain at least one entry")
	}
	if p.TotalValue <= 0 {
		verr.Add("total_value must be positive")
	}
	if !p.RiskTolerance.Valid() {
		verr.Add(fmt.Sprintf("unrecognized risk_tolerance %q", p.RiskTolerance))
	}
	if !p.AccountType.Valid() {
		verr.Add(fmt.Sprintf("unrecognized account_type %q", p.AccountType))
	}

	var sumValue, sumWeight float64
	for i, pos := range p.Positions {
		if err := pos.Validate(); err != nil {
			verr.Add(fmt.Sprintf("position %d (%s): %v", i, pos.Symbol, err))
		}
		sumValue += pos.MarketValue
		sumWeight += pos.Weight
	}

	if len(p.Positions) > 0 {
		if math.Abs(p.TotalValue-sumValue) > totalValueTolerance {
			verr.Add(fmt.Sprintf("total_value %v doesn't match sum of positions %v", p.TotalValue, sumValue))
		}
		if math.Abs(sumWeight-100.0) > weightSumTolerance {
			verr.Add(fmt.Sprintf("position weights sum to %v, expected ~100", sumWeight))
		}
	}

	return verr.ErrOrNil()
}
