package pricing

import (
	"errors"
	"math"
)

// Tier identifies the service level of a visit.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierEnhanced Tier = "enhanced"
	TierPremium  Tier = "premium"
)

// Fixed rate multipliers per tier. Callers cannot override these.
const (
	basicMultiplier    = 1.0
	enhancedMultiplier = 1.2
	premiumMultiplier  = 1.4
)

// ErrUnknownTier indicates the requested service tier does not exist.
var ErrUnknownTier = errors.New("pricing: unknown service tier")

// ErrInvalidDuration indicates a non-positive visit duration.
var ErrInvalidDuration = errors.New("pricing: duration must be positive")

// Valid reports whether the tier is one of the supported service levels.
func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierEnhanced, TierPremium:
		return true
	}
	return false
}

// Multiplier returns the fixed rate multiplier for the tier.
func (t Tier) Multiplier() (float64, error) {
	switch t {
	case TierBasic:
		return basicMultiplier, nil
	case TierEnhanced:
		return enhancedMultiplier, nil
	case TierPremium:
		return premiumMultiplier, nil
	}
	return 0, ErrUnknownTier
}

// Price computes the visit price from the worker's hourly rate, the service
// tier and the visit duration, rounded half-up to two decimal places.
func Price(hourlyRate float64, tier Tier, durationMinutes int) (float64, error) {
	if durationMinutes <= 0 {
		return 0, ErrInvalidDuration
	}
	multiplier, err := tier.Multiplier()
	if err != nil {
		return 0, err
	}

	amount := hourlyRate * multiplier * float64(durationMinutes) / 60
	return math.Round(amount*100) / 100, nil
}
