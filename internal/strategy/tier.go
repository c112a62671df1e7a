package strategy

import (
	"math"

	"RetentionSentinel/internal/model"
)

// SpendTiers maps trailing revenue to a tier. Each bound is inclusive;
// anything above the last bound is HighSpender.
var SpendTiers = []struct {
	MaxSpend float64
	Tier     model.Tier
}{
	{500, model.Basic},
	{1500, model.Silver},
	{2000, model.Gold},
}

// ClassifyTier maps a trailing revenue total to a spend tier.
// Negative or NaN revenue counts as zero.
func ClassifyTier(totalSpend float64) model.Tier {
	if totalSpend < 0 || math.IsNaN(totalSpend) {
		totalSpend = 0
	}
	for _, t := range SpendTiers {
		if totalSpend <= t.MaxSpend {
			return t.Tier
		}
	}
	return model.HighSpender
}
