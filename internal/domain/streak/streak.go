// Package streak tracks consecutive-day participation and its bonuses.
package streak

import (
	"time"

	"github.com/repboard/repboard/internal/domain/reputation"
)

const secondsPerDay = 86400

// Bonus is the one-time governance credit for reaching a streak length.
// Longer streaks earn more; under a week earns nothing.
func Bonus(days int) int64 {
	switch {
	case days < 7:
		return 0
	case days < 14:
		return 100
	case days < 30:
		return 300
	case days < 90:
		return 500
	case days < 180:
		return 800
	default:
		return 1000
	}
}

// Result describes what a streak touch did.
type Result struct {
	CurrentStreak int
	LongestStreak int
	Extended      bool
	Broken        bool
	BonusPoints   int64
}

// Touch advances the member's streak for activity at now. Same calendar day is
// a no-op; the day after the last activity extends the streak and earns the
// bonus; a longer gap restarts the streak at one. The caller commits the bonus
// points and the activity timestamp.
func Touch(m *reputation.Member, now time.Time) Result {
	today := dayIndex(now)
	last := dayIndex(m.LastActivity)

	switch {
	case last == today:
		return Result{CurrentStreak: m.CurrentStreak, LongestStreak: m.LongestStreak}
	case last == today-1:
		m.CurrentStreak++
		if m.CurrentStreak > m.LongestStreak {
			m.LongestStreak = m.CurrentStreak
		}
		return Result{
			CurrentStreak: m.CurrentStreak,
			LongestStreak: m.LongestStreak,
			Extended:      true,
			BonusPoints:   Bonus(m.CurrentStreak),
		}
	default:
		m.CurrentStreak = 1
		if m.LongestStreak < 1 {
			m.LongestStreak = 1
		}
		return Result{CurrentStreak: 1, LongestStreak: m.LongestStreak, Broken: true}
	}
}

// Info is a read-only view of a member's streak standing.
type Info struct {
	Member            reputation.MemberID
	CurrentStreak     int
	LongestStreak     int
	DaysSinceActivity int64
	AtRisk            bool
	Broken            bool
	CurrentBonus      int64
	NextDayBonus      int64
	LastActivity      time.Time
}

// Describe reports the member's streak without mutating it.
func Describe(m reputation.Member, now time.Time) Info {
	gap := dayIndex(now) - dayIndex(m.LastActivity)
	broken := gap > 1
	next := Bonus(m.CurrentStreak + 1)
	if broken {
		next = Bonus(1)
	}
	return Info{
		Member:            m.ID,
		CurrentStreak:     m.CurrentStreak,
		LongestStreak:     m.LongestStreak,
		DaysSinceActivity: gap,
		AtRisk:            gap >= 1,
		Broken:            broken,
		CurrentBonus:      Bonus(m.CurrentStreak),
		NextDayBonus:      next,
		LastActivity:      m.LastActivity,
	}
}

// dayIndex is the UTC calendar day number since the epoch.
func dayIndex(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}
