// Package decay computes time-based score erosion for inactive members.
package decay

import (
	"math"
	"time"

	"github.com/repboard/repboard/internal/domain/reputation"
)

// SecondsPerDay is the decay accounting day.
const SecondsPerDay = 86400

// Preview is the erosion that would apply to a member right now. Nothing is
// mutated to produce one; committing it goes through the clamped score path.
type Preview struct {
	Member      reputation.MemberID
	ElapsedDays int64
	Amounts     [reputation.NumCategories]int64
	WillDecay   bool
}

// Total is the sum of the per-category decay amounts.
func (p Preview) Total() int64 {
	var sum int64
	for _, a := range p.Amounts {
		sum += a
	}
	return sum
}

// Compute returns the decay preview for a member given the config's decay
// settings. Each category loses floor(points * rate * days / 10000), never
// more than it has. Disabled decay or less than one full elapsed day yields an
// all-zero preview.
func Compute(m reputation.Member, cfg reputation.Config, now time.Time) Preview {
	p := Preview{Member: m.ID}
	if !cfg.DecayEnabled {
		return p
	}
	elapsed := now.Unix() - m.LastActivity.Unix()
	if elapsed < SecondsPerDay {
		return p
	}
	p.ElapsedDays = elapsed / SecondsPerDay
	for i, points := range m.CategoryPoints {
		amount := decayAmount(points, cfg.DecayRate, p.ElapsedDays)
		p.Amounts[i] = amount
		if amount > 0 {
			p.WillDecay = true
		}
	}
	return p
}

// decayAmount is floor(points*rate*days/10000) saturated at points. The
// intermediate product can exceed int64 for large balances and long gaps;
// a wrapped product means the true amount exceeds the balance anyway.
func decayAmount(points, rate, days int64) int64 {
	if points <= 0 || rate <= 0 || days <= 0 {
		return 0
	}
	factor := rate * days
	if factor/days != rate || points > math.MaxInt64/factor {
		return points
	}
	amount := points * factor / reputation.WeightTotal
	if amount > points {
		amount = points
	}
	return amount
}
