// Package reputation contains the core record types and score arithmetic for
// the community reputation ledger.
package reputation

import "time"

// MemberID identifies a member. It is supplied by the authentication layer and
// treated as opaque here.
type MemberID string

// Category is one of the four fixed scoring dimensions.
type Category uint8

const (
	Governance Category = iota
	Development
	Community
	Treasury

	// NumCategories is the number of scoring dimensions.
	NumCategories = 4
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Governance:
		return "governance"
	case Development:
		return "development"
	case Community:
		return "community"
	case Treasury:
		return "treasury"
	default:
		return "unknown"
	}
}

// Valid reports whether c names a real category.
func (c Category) Valid() bool {
	return c < NumCategories
}

// ParseCategory maps a category name to its Category value.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "governance":
		return Governance, true
	case "development":
		return Development, true
	case "community":
		return Community, true
	case "treasury":
		return Treasury, true
	default:
		return 0, false
	}
}

// Achievement identifies a milestone badge. The value doubles as the bit
// position in a member's AchievementSet.
type Achievement uint8

const (
	FirstVote Achievement = iota
	WeeklyStreak
	MonthlyStreak
	TopContributor
	ConsistentVoter
	CategoryExpert
	SeasonWinner
	CommunityBuilder

	numAchievements
)

// AllAchievements lists every achievement in bit order.
func AllAchievements() []Achievement {
	out := make([]Achievement, 0, numAchievements)
	for a := Achievement(0); a < numAchievements; a++ {
		out = append(out, a)
	}
	return out
}

// String returns the achievement name.
func (a Achievement) String() string {
	switch a {
	case FirstVote:
		return "first_vote"
	case WeeklyStreak:
		return "weekly_streak"
	case MonthlyStreak:
		return "monthly_streak"
	case TopContributor:
		return "top_contributor"
	case ConsistentVoter:
		return "consistent_voter"
	case CategoryExpert:
		return "category_expert"
	case SeasonWinner:
		return "season_winner"
	case CommunityBuilder:
		return "community_builder"
	default:
		return "unknown"
	}
}

// Valid reports whether a names a real achievement.
func (a Achievement) Valid() bool {
	return a < numAchievements
}

// ParseAchievement maps an achievement name to its value.
func ParseAchievement(s string) (Achievement, bool) {
	for a := Achievement(0); a < numAchievements; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// AchievementSet is a fixed-width bitset of earned achievements. Bits are
// set-only: no operation ever clears one.
type AchievementSet uint64

// Has reports whether the achievement bit is set.
func (s AchievementSet) Has(a Achievement) bool {
	return s&(1<<a) != 0
}

// With returns the set with the achievement bit set.
func (s AchievementSet) With(a Achievement) AchievementSet {
	return s | (1 << a)
}

// List returns the earned achievements in bit order.
func (s AchievementSet) List() []Achievement {
	var out []Achievement
	for a := Achievement(0); a < numAchievements; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Config is the singleton tunable-parameter record. It is created once by
// system initialization and mutated only through admin-authorized updates.
type Config struct {
	Admin               MemberID
	VotingCooldown      int64 // seconds between votes on the same target
	MinAccountAge       int64 // seconds before a new member may vote
	DailyVoteLimit      int   // votes per calendar day per (voter, target) pair
	MinReputationToVote int64
	CategoryWeights     [NumCategories]int64 // basis points, sums to 10000
	RoleThresholds      []int64              // strictly increasing
	CurrentSeason       uint32
	TotalMembers        int64
	DecayEnabled        bool
	DecayRate           int64 // basis points per day of inactivity
	Paused              bool
	InitializedAt       time.Time
}

// ConfigUpdate is a partial config mutation; nil fields are left unchanged.
type ConfigUpdate struct {
	VotingCooldown      *int64
	MinAccountAge       *int64
	DailyVoteLimit      *int
	MinReputationToVote *int64
	CategoryWeights     *[NumCategories]int64
	RoleThresholds      []int64
	DecayEnabled        *bool
	DecayRate           *int64
}

// Member is the per-member reputation record. TotalScore is always the sum of
// CategoryPoints; achievements and role level only ever move forward.
type Member struct {
	ID             MemberID
	CategoryPoints [NumCategories]int64
	TotalScore     int64
	RoleLevel      int
	Achievements   AchievementSet
	CurrentStreak  int
	LongestStreak  int
	VotesCast      int64
	LastActivity   time.Time
	CreatedAt      time.Time
}

// VotingRecord tracks the voting history for one ordered (voter, target) pair.
// The daily counter belongs to the pair, so the daily limit caps repeat votes
// on the same target rather than a voter's global output.
type VotingRecord struct {
	Voter              MemberID
	Target             MemberID
	LastVoteAt         time.Time
	DailyVotes         int
	DailyWindowStart   time.Time
	TotalVotesOnTarget int64
}

// Season is a named competitive period. Immutable once created; a season stays
// current until the next one starts.
type Season struct {
	ID           uint32
	Name         string
	StartedAt    time.Time
	DurationDays int
}

// EndsAt returns the scheduled end of the season.
func (s Season) EndsAt() time.Time {
	return s.StartedAt.AddDate(0, 0, s.DurationDays)
}

// AuditEntry records one admin score adjustment.
type AuditEntry struct {
	ID        string // uuid; bulk batches share one id
	Member    MemberID
	Category  Category
	Delta     int64
	Reason    string
	Actor     MemberID
	AppliedAt time.Time
}

// Entry is one leaderboard row.
type Entry struct {
	Rank      int
	Member    MemberID
	Score     int64
	RoleLevel int
}
