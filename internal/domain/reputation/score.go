package reputation

const (
	// WeightTotal is the basis-point sum every weight vector must reach.
	WeightTotal = 10000

	// MinVoteWeight and MaxVoteWeight bound a single vote's weight.
	MinVoteWeight = 1
	MaxVoteWeight = 10
)

// ValidateCategoryWeights checks that the four weights sum to exactly 10000
// basis points.
func ValidateCategoryWeights(weights [NumCategories]int64) error {
	var sum int64
	for _, w := range weights {
		if w < 0 {
			return ErrInvalidCategoryWeight
		}
		sum += w
	}
	if sum != WeightTotal {
		return ErrInvalidCategoryWeight
	}
	return nil
}

// ValidateRoleThresholds checks that thresholds are non-empty and strictly
// increasing.
func ValidateRoleThresholds(thresholds []int64) error {
	if len(thresholds) == 0 {
		return ErrInvalidRoleThresholds
	}
	for i, t := range thresholds {
		if t < 0 || (i > 0 && t <= thresholds[i-1]) {
			return ErrInvalidRoleThresholds
		}
	}
	return nil
}

// ValidateVoteWeight checks the 1..10 weight bound.
func ValidateVoteWeight(weight int) error {
	if weight < MinVoteWeight || weight > MaxVoteWeight {
		return ErrInvalidVoteWeight
	}
	return nil
}

// UpvotePoints is the score credit for an upvote of the given weight.
func UpvotePoints(weight int) int64 {
	return int64(weight)
}

// DownvotePoints is the score debit for a downvote: half the weight, rounded
// up, so a downvote never outweighs an equal upvote.
func DownvotePoints(weight int) int64 {
	return int64((weight + 1) / 2)
}

// ApplyDelta adjusts one category by delta and recomputes the total. A delta
// that would drive the category negative is rejected and leaves the member
// untouched.
func (m *Member) ApplyDelta(category Category, delta int64) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	next := m.CategoryPoints[category] + delta
	if next < 0 {
		return ErrNegativeReputation
	}
	m.CategoryPoints[category] = next
	m.recomputeTotal()
	return nil
}

// ApplyDeltaClamped adjusts one category by delta, flooring the result at zero
// instead of rejecting. Used by downvotes and decay, which clamp rather than
// error. Returns the points actually removed or added.
func (m *Member) ApplyDeltaClamped(category Category, delta int64) int64 {
	next := m.CategoryPoints[category] + delta
	if next < 0 {
		next = 0
	}
	applied := next - m.CategoryPoints[category]
	m.CategoryPoints[category] = next
	m.recomputeTotal()
	return applied
}

func (m *Member) recomputeTotal() {
	var sum int64
	for _, p := range m.CategoryPoints {
		sum += p
	}
	m.TotalScore = sum
}

// WeightedScore is the basis-point weighted combination of the category
// scores. It feeds read-only views; ranking and role thresholds use the plain
// TotalScore sum.
func (m *Member) WeightedScore(weights [NumCategories]int64) int64 {
	var sum int64
	for i, p := range m.CategoryPoints {
		sum += p * weights[i]
	}
	return sum / WeightTotal
}

// ClaimableLevels lists the role levels the member could claim right now.
// Claims are strictly sequential, so this is either empty or the single next
// level.
func (m *Member) ClaimableLevels(thresholds []int64) []int {
	next := m.RoleLevel + 1
	if next > len(thresholds) {
		return nil
	}
	if m.TotalScore >= thresholds[next-1] {
		return []int{next}
	}
	return nil
}

// QualifiesFor reports whether the member's stats satisfy the automatic
// criteria for the achievement. Admin-granted badges (SeasonWinner) never
// qualify automatically.
func (m *Member) QualifiesFor(a Achievement) bool {
	switch a {
	case FirstVote:
		return m.VotesCast >= 1
	case WeeklyStreak:
		return m.CurrentStreak >= 7
	case MonthlyStreak:
		return m.CurrentStreak >= 30
	case TopContributor:
		return m.TotalScore >= 10000
	case ConsistentVoter:
		return m.VotesCast >= 100
	case CategoryExpert:
		for _, p := range m.CategoryPoints {
			if p >= 5000 {
				return true
			}
		}
		return false
	case CommunityBuilder:
		return m.CategoryPoints[Community] >= 3000
	case SeasonWinner:
		return false
	default:
		return false
	}
}

// Progress describes how far a member is from one achievement.
type Progress struct {
	Achievement Achievement
	Earned      bool
	Current     int64
	Required    int64
}

// Percent returns the completion percentage, capped at 100.
func (p Progress) Percent() int {
	if p.Required <= 0 {
		return 0
	}
	cur := p.Current
	if cur > p.Required {
		cur = p.Required
	}
	return int(cur * 100 / p.Required)
}

// AchievementProgress reports progress toward every automatically earnable
// achievement.
func (m *Member) AchievementProgress() []Progress {
	maxCategory := int64(0)
	for _, p := range m.CategoryPoints {
		if p > maxCategory {
			maxCategory = p
		}
	}
	list := []Progress{
		{Achievement: FirstVote, Current: m.VotesCast, Required: 1},
		{Achievement: WeeklyStreak, Current: int64(m.CurrentStreak), Required: 7},
		{Achievement: MonthlyStreak, Current: int64(m.CurrentStreak), Required: 30},
		{Achievement: TopContributor, Current: m.TotalScore, Required: 10000},
		{Achievement: ConsistentVoter, Current: m.VotesCast, Required: 100},
		{Achievement: CategoryExpert, Current: maxCategory, Required: 5000},
		{Achievement: CommunityBuilder, Current: m.CategoryPoints[Community], Required: 3000},
	}
	for i := range list {
		list[i].Earned = m.Achievements.Has(list[i].Achievement)
		if list[i].Current > list[i].Required {
			list[i].Current = list[i].Required
		}
	}
	return list
}
