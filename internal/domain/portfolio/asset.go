// Package portfolio defines the core domain entities for the player's
// balance sheet: assets and liabilities.
// This package is PURE and must NOT import any infrastructure packages
// (network, journal, platform).
package portfolio

// AssetCategory classifies an income-producing or liquid holding.
type AssetCategory string

const (
	AssetCash       AssetCategory = "cash"
	AssetWork       AssetCategory = "work"
	AssetStock      AssetCategory = "stock"
	AssetBonds      AssetCategory = "bonds"
	AssetRealEstate AssetCategory = "real_estate"
	AssetBusiness   AssetCategory = "business"
	AssetDeposit    AssetCategory = "deposit"
	AssetCrypto     AssetCategory = "crypto"
	AssetOther      AssetCategory = "other"
)

// RiskTier is an optional volatility marker for investment assets.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Asset represents a single holding on the player's balance sheet.
// The asset with AssetCash category is the sole spendable-cash buffer;
// its Value is the only field mutated during normal play.
type Asset struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      AssetCategory `json:"category"`
	MonthlyIncome int64         `json:"monthly_income"`
	Value         int64         `json:"value"`
	PurchasePrice int64         `json:"purchase_price"`
	Risk          RiskTier      `json:"risk,omitempty"`
	Hidden        bool          `json:"hidden,omitempty"` // excluded from summary lists
}

// TotalIncome sums the monthly income of all assets.
func TotalIncome(assets []*Asset) int64 {
	var sum int64
	for _, a := range assets {
		sum += a.MonthlyIncome
	}
	return sum
}

// TotalValue sums the current value of all assets (the cash asset included).
func TotalValue(assets []*Asset) int64 {
	var sum int64
	for _, a := range assets {
		sum += a.Value
	}
	return sum
}
