package decay_test

import (
	"math"
	"testing"
	"time"

	"github.com/repboard/repboard/internal/domain/decay"
	"github.com/repboard/repboard/internal/domain/reputation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given a member with points and a decay-enabled config", t, func() {
		lastActive := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
		m := reputation.Member{ID: "alice", LastActivity: lastActive}
		So(m.ApplyDelta(reputation.Governance, 10000), ShouldBeNil)
		So(m.ApplyDelta(reputation.Community, 400), ShouldBeNil)
		cfg := reputation.Config{DecayEnabled: true, DecayRate: 10}

		Convey("When less than one full day has elapsed", func() {
			p := decay.Compute(m, cfg, lastActive.Add(23*time.Hour))

			Convey("Then nothing decays", func() {
				So(p.ElapsedDays, ShouldEqual, 0)
				So(p.WillDecay, ShouldBeFalse)
				So(p.Total(), ShouldEqual, 0)
			})
		})

		Convey("When five days have elapsed", func() {
			p := decay.Compute(m, cfg, lastActive.Add(5*24*time.Hour))

			Convey("Then each category loses floor(points*rate*days/10000)", func() {
				So(p.ElapsedDays, ShouldEqual, 5)
				// 10000 * 10 * 5 / 10000 = 50
				So(p.Amounts[reputation.Governance], ShouldEqual, 50)
				// 400 * 10 * 5 / 10000 = 2
				So(p.Amounts[reputation.Community], ShouldEqual, 2)
				So(p.Amounts[reputation.Development], ShouldEqual, 0)
				So(p.Total(), ShouldEqual, 52)
				So(p.WillDecay, ShouldBeTrue)
			})
		})

		Convey("When the elapsed time is enormous", func() {
			p := decay.Compute(m, cfg, lastActive.AddDate(10, 0, 0))

			Convey("Then no category loses more than it has", func() {
				So(p.Amounts[reputation.Governance], ShouldEqual, 10000)
				So(p.Amounts[reputation.Community], ShouldEqual, 400)
			})
		})

		Convey("When decay is disabled", func() {
			cfg.DecayEnabled = false
			p := decay.Compute(m, cfg, lastActive.AddDate(0, 1, 0))

			Convey("Then the preview is all zero", func() {
				So(p.ElapsedDays, ShouldEqual, 0)
				So(p.WillDecay, ShouldBeFalse)
			})
		})

		Convey("When the product of points, rate and days exceeds int64", func() {
			rich := reputation.Member{ID: "whale", LastActivity: lastActive}
			So(rich.ApplyDelta(reputation.Governance, math.MaxInt64/2), ShouldBeNil)
			p := decay.Compute(rich, cfg, lastActive.AddDate(1, 0, 0))

			Convey("Then the amount saturates at the balance instead of wrapping", func() {
				So(p.Amounts[reputation.Governance], ShouldEqual, math.MaxInt64/2)
				So(p.Amounts[reputation.Governance], ShouldBeGreaterThanOrEqualTo, 0)
				So(p.WillDecay, ShouldBeTrue)
			})
		})

		Convey("When the rate-days factor itself overflows", func() {
			rich := reputation.Member{ID: "whale", LastActivity: lastActive}
			So(rich.ApplyDelta(reputation.Treasury, 1000), ShouldBeNil)
			hot := cfg
			hot.DecayRate = math.MaxInt64 / 2
			p := decay.Compute(rich, hot, lastActive.Add(3*24*time.Hour))

			Convey("Then the member loses at most what it has", func() {
				So(p.Amounts[reputation.Treasury], ShouldEqual, 1000)
			})
		})

		Convey("When the member has tiny balances", func() {
			small := reputation.Member{ID: "bob", LastActivity: lastActive}
			So(small.ApplyDelta(reputation.Treasury, 5), ShouldBeNil)
			p := decay.Compute(small, cfg, lastActive.Add(3*24*time.Hour))

			Convey("Then the floored amount can be zero while days still count", func() {
				So(p.ElapsedDays, ShouldEqual, 3)
				So(p.Total(), ShouldEqual, 0)
				So(p.WillDecay, ShouldBeFalse)
			})
		})
	})
}
