package config

import "fmt"

// ExportConfig holds the pricing parameters and retry budget of a run.
type ExportConfig struct {
	// Source labels every written interval with its data provider.
	Source string `json:"source"`
	// VATRate is the value-added-tax rate applied to the market price.
	VATRate float64 `json:"vat_rate"`
	// SourcingMarkup is the supplier's fixed markup in €/kWh.
	SourcingMarkup float64 `json:"sourcing_markup"`
	// EnergyTax is the fixed energy tax in €/kWh.
	EnergyTax float64 `json:"energy_tax"`
	// RetryInitialMS is the first backoff delay for transient failures.
	RetryInitialMS int `json:"retry_initial_ms"`
	// RetryMaxAttempts caps total attempts per fetch or write.
	RetryMaxAttempts int `json:"retry_max_attempts"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "entso-e"
	}
	if c.VATRate == 0 {
		c.VATRate = 0.21
	}
	if c.SourcingMarkup == 0 {
		c.SourcingMarkup = 0.0182
	}
	if c.EnergyTax == 0 {
		c.EnergyTax = 0.1316
	}
	if c.RetryInitialMS <= 0 {
		c.RetryInitialMS = 100
	}
	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = 3
	}
}

// Validate checks the parameters are usable.
func (c ExportConfig) Validate() error {
	if c.VATRate < 0 || c.VATRate >= 1 {
		return fmt.Errorf("vat rate %f out of range", c.VATRate)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	return nil
}
