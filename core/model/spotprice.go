package model

import "time"

// SpotPrice is one priced delivery interval of the day-ahead market.
// Prices are in €/kWh; the provider publishes €/MWh and the normalizer scales.
type SpotPrice struct {
	ID                  string    `json:"id"`
	Source              string    `json:"source"`
	From                time.Time `json:"from"`
	Till                time.Time `json:"till"`
	MarketPrice         float64   `json:"marketPrice"`
	MarketPriceTax      float64   `json:"marketPriceTax"`
	SourcingMarkupPrice float64   `json:"sourcingMarkupPrice"`
	EnergyTaxPrice      float64   `json:"energyTaxPrice"`
}

// Checkpoint records export progress across runs. FutureSpotPrices holds the
// intervals whose delivery window had not yet closed at the time of the run;
// LastFrom is the start of the most recently written interval and is the sole
// input to the new/already-written decision.
type Checkpoint struct {
	FutureSpotPrices []SpotPrice `json:"futureSpotPrices"`
	LastFrom         time.Time   `json:"lastFrom"`
}
