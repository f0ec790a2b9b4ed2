package config

// DefaultPricePerUnit is the USD price of one premium request beyond quota.
const DefaultPricePerUnit = 0.04

// PricingFunc prices the exceeding volume of one model. multiplier is the
// model's configured cost weight.
type PricingFunc func(model string, exceeding, multiplier float64) float64

// PerUnitPricing charges exceeding * multiplier * price. Models with a zero
// multiplier are free regardless of volume.
func PerUnitPricing(price float64) PricingFunc {
	return func(_ string, exceeding, multiplier float64) float64 {
		if multiplier == 0 || exceeding <= 0 {
			return 0
		}
		return exceeding * multiplier * price
	}
}

// DefaultPricing is PerUnitPricing at DefaultPricePerUnit.
func DefaultPricing() PricingFunc {
	return PerUnitPricing(DefaultPricePerUnit)
}
