package reputation_test

import (
	"testing"
	"time"

	"github.com/repboard/repboard/internal/domain/reputation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	Convey("Given the four scoring categories", t, func() {
		Convey("Then names round-trip through ParseCategory", func() {
			for c := reputation.Category(0); c < reputation.NumCategories; c++ {
				parsed, ok := reputation.ParseCategory(c.String())
				So(ok, ShouldBeTrue)
				So(parsed, ShouldEqual, c)
			}
		})

		Convey("Then an unknown name is rejected", func() {
			_, ok := reputation.ParseCategory("marketing")
			So(ok, ShouldBeFalse)
		})

		Convey("Then values past the last category are invalid", func() {
			So(reputation.Treasury.Valid(), ShouldBeTrue)
			So(reputation.Category(reputation.NumCategories).Valid(), ShouldBeFalse)
			So(reputation.Category(reputation.NumCategories).String(), ShouldEqual, "unknown")
		})
	})
}

func TestAchievementSet(t *testing.T) {
	Convey("Given an empty achievement set", t, func() {
		var set reputation.AchievementSet

		Convey("Then no achievement is present", func() {
			for _, a := range reputation.AllAchievements() {
				So(set.Has(a), ShouldBeFalse)
			}
			So(set.List(), ShouldBeNil)
		})

		Convey("When bits are set", func() {
			set = set.With(reputation.FirstVote).With(reputation.SeasonWinner)

			Convey("Then only those bits read back", func() {
				So(set.Has(reputation.FirstVote), ShouldBeTrue)
				So(set.Has(reputation.SeasonWinner), ShouldBeTrue)
				So(set.Has(reputation.WeeklyStreak), ShouldBeFalse)
				So(set.List(), ShouldResemble, []reputation.Achievement{reputation.FirstVote, reputation.SeasonWinner})
			})

			Convey("And setting a bit twice is a no-op", func() {
				So(set.With(reputation.FirstVote), ShouldEqual, set)
			})
		})

		Convey("Then achievement names round-trip through ParseAchievement", func() {
			for _, a := range reputation.AllAchievements() {
				parsed, ok := reputation.ParseAchievement(a.String())
				So(ok, ShouldBeTrue)
				So(parsed, ShouldEqual, a)
			}
			_, ok := reputation.ParseAchievement("participation_trophy")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSeasonEndsAt(t *testing.T) {
	Convey("Given a 30-day season", t, func() {
		start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
		season := reputation.Season{ID: 1, Name: "launch", StartedAt: start, DurationDays: 30}

		Convey("Then it ends exactly 30 days after it starts", func() {
			So(season.EndsAt(), ShouldResemble, start.AddDate(0, 0, 30))
		})
	})
}
