package qc

// Tier is the confidence level a checkpoint reached. Tiers map onto the
// non-linear {0,2,3,5} point scale only at the output boundary.
type Tier int

const (
	TierNone    Tier = iota // no evidence
	TierWeak                // evidence against
	TierNeutral             // partial or not applicable
	TierStrong              // clear positive evidence
)

var tierPoints = [...]int{
	TierNone:    0,
	TierWeak:    2,
	TierNeutral: 3,
	TierStrong:  5,
}

// Points converts the tier to its rubric score.
func (t Tier) Points() int {
	if t < TierNone || t > TierStrong {
		return 0
	}
	return tierPoints[t]
}

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierWeak:
		return "weak"
	case TierNeutral:
		return "neutral"
	case TierStrong:
		return "strong"
	default:
		return "unknown"
	}
}
