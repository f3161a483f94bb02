package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/repboard/repboard/pkg/metrics"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := metrics.NewManager()

		Convey("When counters are recorded", func() {
			m.MemberRegistered()
			m.VoteAccepted("up")
			m.VoteAccepted("down")
			m.VoteRejected("cooldown")
			m.AchievementAwarded("first_vote")
			m.RoleClaimed()
			m.DecayRemoved(42)
			m.SeasonStarted()
			m.ObserveHTTP("votes", "200", 0.003)

			Convey("Then the handler exposes them", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(body, ShouldContainSubstring, `repboard_members_registered_total 1`)
				So(body, ShouldContainSubstring, `repboard_votes_accepted_total{direction="up"} 1`)
				So(body, ShouldContainSubstring, `repboard_votes_rejected_total{reason="cooldown"} 1`)
				So(body, ShouldContainSubstring, `repboard_achievements_awarded_total{achievement="first_vote"} 1`)
				So(body, ShouldContainSubstring, `repboard_decay_points_removed_total 42`)
				So(body, ShouldContainSubstring, `repboard_seasons_started_total 1`)
				So(body, ShouldContainSubstring, `repboard_http_request_duration_seconds_count{route="votes",status="200"} 1`)
			})
		})

		Convey("When decay removal is zero or negative", func() {
			m.DecayRemoved(0)
			m.DecayRemoved(-5)

			Convey("Then the counter stays untouched", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(rec.Body.String(), ShouldContainSubstring, `repboard_decay_points_removed_total 0`)
			})
		})
	})

	Convey("Given a nil manager", t, func() {
		var m *metrics.Manager

		Convey("Then every recording method is a safe no-op", func() {
			So(func() {
				m.MemberRegistered()
				m.VoteAccepted("up")
				m.VoteRejected("paused")
				m.AchievementAwarded("first_vote")
				m.RoleClaimed()
				m.DecayRemoved(1)
				m.SeasonStarted()
				m.ObserveHTTP("votes", "200", 0.1)
			}, ShouldNotPanic)
		})
	})

	Convey("Given a custom namespace and registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithNamespace("ledger"),
			metrics.WithRegistry(registry),
			metrics.WithHistogramBuckets([]float64{0.01, 0.1, 1}),
		)
		m.MemberRegistered()

		Convey("Then the metrics land in that registry under the namespace", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "ledger_members_registered_total")
		})
	})
}
