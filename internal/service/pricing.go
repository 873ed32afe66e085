package service

import "math"

// DefaultBaseRate is the price of one hour on an untiered court.
const DefaultBaseRate = 25.0

// Pricer computes booking prices: BaseRate per 60 minutes, linear in
// duration, times the court's tier multiplier.  Courts absent from Tiers
// pay the base rate.
type Pricer struct {
	BaseRate float64
	Tiers    map[string]float64
}

// DefaultPricer returns the stock tiers: court "1" +20%, court "2" +50%.
func DefaultPricer() Pricer {
	return Pricer{
		BaseRate: DefaultBaseRate,
		Tiers:    map[string]float64{"1": 1.2, "2": 1.5},
	}
}

// CalculatePrice never fails: anything it cannot price sensibly is charged
// the flat one-hour base rate.  Results are rounded to cents.
func (p Pricer) CalculatePrice(duration int, courtID string) float64 {
	base := p.BaseRate
	if !finite(base) || base <= 0 {
		base = DefaultBaseRate
	}
	if duration <= 0 {
		return round2(base)
	}
	price := base * float64(duration) / 60
	if m, ok := p.Tiers[courtID]; ok && finite(m) && m > 0 {
		price *= m
	}
	if !finite(price) {
		return round2(base)
	}
	return round2(price)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
