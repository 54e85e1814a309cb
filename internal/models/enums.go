// Package models defines the portfolio and risk data types shared across
// the ingestion pipeline and the query API.
package models

// RiskTolerance is the client's stated behavioral risk preference. It
// drives the post-calculation adjustment applied in internal/risk.
type RiskTolerance string

const (
	RiskToleranceConservative RiskTolerance = "Conservative"
	RiskToleranceModerate     RiskTolerance = "Moderate"
	RiskToleranceAggressive   RiskTolerance = "Aggressive"
)

func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskToleranceConservative, RiskToleranceModerate, RiskToleranceAggressive:
		return true
	default:
		return false
	}
}

// AccountType enumerates the account wrappers a portfolio can be held in.
type AccountType string

const (
	AccountTypeIndividual AccountType = "Individual"
	AccountTypeJoint      AccountType = "Joint"
	AccountTypeIRA        AccountType = "IRA"
	AccountTypeRothIRA    AccountType = "Roth IRA"
	AccountType401k       AccountType = "401k"
	AccountTypeTrust      AccountType = "Trust"
)

func (a AccountType) Valid() bool {
	switch a {
	case AccountTypeIndividual, AccountTypeJoint, AccountTypeIRA, AccountTypeRothIRA, AccountType401k, AccountTypeTrust:
		return true
	default:
		return false
	}
}

// Sector classifies a position for correlation purposes.
type Sector string

const (
	SectorTechnology    Sector = "Technology"
	SectorHealthcare    Sector = "Healthcare"
	SectorFinance       Sector = "Finance"
	SectorConsumer      Sector = "Consumer"
	SectorEnergy        Sector = "Energy"
	SectorRealEstate    Sector = "Real Estate"
	SectorRetail        Sector = "Retail"
	SectorTelecom       Sector = "Telecom"
	SectorEntertainment Sector = "Entertainment"
	SectorAutomotive    Sector = "Automotive"
	SectorOther         Sector = "Other"
)

func (s Sector) Valid() bool {
	switch s {
	case SectorTechnology, SectorHealthcare, SectorFinance, SectorConsumer, SectorEnergy,
		SectorRealEstate, SectorRetail, SectorTelecom, SectorEntertainment, SectorAutomotive, SectorOther:
		return true
	default:
		return false
	}
}
