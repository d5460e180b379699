package qc

import "math"

// Record is the scored outcome of one ticket.
type Record struct {
	Tiers           Tiers
	Total           int
	Percent         float64
	WeightedPercent float64
}

// Score returns the points of checkpoint c.
func (r Record) Score(c Checkpoint) int {
	if c < 0 || c >= numCheckpoints {
		return 0
	}
	return r.Tiers[c].Points()
}

// Scores maps checkpoint ids to points.
func (r Record) Scores() map[string]int {
	out := make(map[string]int, numCheckpoints)
	for _, c := range allCheckpoints {
		out[c.ID()] = r.Score(c)
	}
	return out
}

// Consistent reports whether Total and Percent still agree with the tiers.
func (r Record) Consistent() bool {
	return r.Total == sumPoints(r.Tiers) && r.Percent == Percent(r.Total)
}

// Aggregator sums checkpoint points. Total and Percent are unweighted;
// WeightedPercent applies the rule set weights.
type Aggregator struct {
	weights [numCheckpoints]float64
}

// NewAggregator reads the weights of rules.
func NewAggregator(rules RuleSet) Aggregator {
	var a Aggregator
	for _, c := range allCheckpoints {
		a.weights[c] = rules.weight(c)
	}
	return a
}

// Aggregate computes the totals for t.
func (a Aggregator) Aggregate(t Tiers) Record {
	total := sumPoints(t)

	var weighted, sumW float64
	for _, c := range allCheckpoints {
		weighted += a.weights[c] * float64(t[c].Points())
		sumW += a.weights[c]
	}
	var wp float64
	if sumW > 0 {
		wp = round1(weighted / (MaxPoints * sumW) * 100)
	}

	return Record{
		Tiers:           t,
		Total:           total,
		Percent:         Percent(total),
		WeightedPercent: wp,
	}
}

// Percent converts a total to a percentage of MaxTotal, one decimal.
func Percent(total int) float64 {
	return round1(float64(total) / float64(MaxTotal) * 100)
}

func sumPoints(t Tiers) int {
	total := 0
	for _, tier := range t {
		total += tier.Points()
	}
	return total
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
