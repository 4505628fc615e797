package pms

import "github.com/shopspring/decimal"

// Loyalty tiers, highest first.
const (
	TierPlatinum = "Platinum"
	TierGold     = "Gold"
	TierSilver   = "Silver"
	TierBronze   = "Bronze"
)

var tiers = []struct {
	min  int64
	name string
}{
	{1000, TierPlatinum},
	{500, TierGold},
	{200, TierSilver},
}

// LoyaltyPoints returns one point per ten whole currency units spent.
func LoyaltyPoints(totalSpent decimal.Decimal) int64 {
	if totalSpent.IsNegative() {
		return 0
	}
	return totalSpent.IntPart() / 10
}

// TierFor returns the tier earned by points.
func TierFor(points int64) string {
	for _, t := range tiers {
		if points >= t.min {
			return t.name
		}
	}
	return TierBronze
}
