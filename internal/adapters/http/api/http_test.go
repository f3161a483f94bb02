package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/repboard/repboard/internal/adapters/http/api"
	"github.com/repboard/repboard/internal/app"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/pkg/metrics"
)

var testEpoch = time.Date(2026, time.February, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *app.Service
	clock *clockwork.FakeClock
	mux   *http.ServeMux
}

// newFixture wires a service on a fake clock into a mux, with the ledger
// initialized and alice and bob registered and aged past minAccountAge.
func newFixture() *fixture {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testEpoch)
	svc := app.New(app.WithClock(clock), app.WithMetrics(metrics.NewManager()))
	So(svc.InitializeSystem(ctx, app.InitParams{
		VotingCooldown:      600,
		MinAccountAge:       86400,
		DailyVoteLimit:      10,
		MinReputationToVote: 100,
		CategoryWeights:     [reputation.NumCategories]int64{2500, 2500, 2500, 2500},
		RoleThresholds:      []int64{100, 500, 1000, 2500, 5000},
	}, "admin"), ShouldBeNil)
	So(svc.RegisterMember(ctx, "alice"), ShouldBeNil)
	So(svc.RegisterMember(ctx, "bob"), ShouldBeNil)
	So(svc.AdjustScore(ctx, app.ScoreAdjustment{
		Member:   "alice",
		Category: reputation.Governance,
		Delta:    200,
		Reason:   "seed",
	}, "admin"), ShouldBeNil)
	clock.Advance(24 * time.Hour)

	mux := http.NewServeMux()
	api.NewServer(svc, metrics.NewManager()).Register(mux)
	return &fixture{svc: svc, clock: clock, mux: mux}
}

func (f *fixture) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		So(json.NewEncoder(&buf).Encode(body), ShouldBeNil)
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set("X-Caller-ID", caller)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](rec *httptest.ResponseRecorder) T {
	var out T
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()

		Convey("Then the health endpoint answers", func() {
			rec := f.do(http.MethodGet, "/healthz", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the metrics endpoint answers", func() {
			rec := f.do(http.MethodGet, "/metrics", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint summarizes the ledger", func() {
			rec := f.do(http.MethodGet, "/stats", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			stats := decodeBody[map[string]any](rec)
			So(stats["total_members"], ShouldEqual, 2)
		})
	})
}

func TestMemberEndpoints(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()

		Convey("When a new caller registers", func() {
			rec := f.do(http.MethodPost, "/members", "carol", nil)

			Convey("Then the member record comes back with 201", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				body := decodeBody[map[string]any](rec)
				So(body["id"], ShouldEqual, "carol")
				So(body["total_score"], ShouldEqual, 0)
			})
		})

		Convey("When registration lacks a caller header", func() {
			rec := f.do(http.MethodPost, "/members", "", nil)
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When a caller registers twice", func() {
			rec := f.do(http.MethodPost, "/members", "alice", nil)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When a member is fetched", func() {
			rec := f.do(http.MethodGet, "/members/alice", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decodeBody[map[string]any](rec)
			So(body["total_score"], ShouldEqual, 200)
		})

		Convey("When an unknown member is fetched", func() {
			rec := f.do(http.MethodGet, "/members/ghost", "", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When achievement progress is read", func() {
			rec := f.do(http.MethodGet, "/members/alice/achievements", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decodeBody[[]map[string]any](rec)
			So(len(body), ShouldBeGreaterThan, 0)
		})

		Convey("When a member touches another member's streak", func() {
			rec := f.do(http.MethodPost, "/members/bob/streak", "alice", nil)
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When a member touches its own streak", func() {
			rec := f.do(http.MethodPost, "/members/alice/streak", "alice", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decodeBody[map[string]any](rec)
			So(body["current_streak"], ShouldEqual, 1)
		})

		Convey("When role claims flow through HTTP", func() {
			rec := f.do(http.MethodGet, "/members/alice/roles", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			levels := decodeBody[map[string][]int](rec)
			So(levels["claimable_levels"], ShouldResemble, []int{1})

			rec = f.do(http.MethodPost, "/members/alice/roles", "alice", map[string]int{"level": 1})
			So(rec.Code, ShouldEqual, http.StatusOK)

			rec = f.do(http.MethodPost, "/members/alice/roles", "alice", map[string]int{"level": 3})
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestVoteEndpoint(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()
		vote := map[string]any{"target": "bob", "upvote": true, "category": "governance", "weight": 5}

		Convey("When alice casts a valid vote", func() {
			rec := f.do(http.MethodPost, "/votes", "alice", vote)

			Convey("Then it lands on bob's record", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				got := f.do(http.MethodGet, "/members/bob", "", nil)
				body := decodeBody[map[string]any](got)
				So(body["total_score"], ShouldEqual, 5)
			})

			Convey("And an immediate repeat hits the cooldown with 409", func() {
				rec := f.do(http.MethodPost, "/votes", "alice", vote)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the caller header is missing", func() {
			rec := f.do(http.MethodPost, "/votes", "", vote)
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When the category is unknown", func() {
			bad := map[string]any{"target": "bob", "upvote": true, "category": "vibes", "weight": 5}
			rec := f.do(http.MethodPost, "/votes", "alice", bad)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the weight is out of range", func() {
			bad := map[string]any{"target": "bob", "upvote": true, "category": "governance", "weight": 11}
			rec := f.do(http.MethodPost, "/votes", "alice", bad)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body carries unknown fields", func() {
			bad := map[string]any{"target": "bob", "upvote": true, "category": "governance", "weight": 5, "bribe": 1}
			rec := f.do(http.MethodPost, "/votes", "alice", bad)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()

		Convey("When the leaderboard is read", func() {
			rec := f.do(http.MethodGet, "/leaderboard", "", nil)

			Convey("Then rows come back ranked", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				rows := decodeBody[[]map[string]any](rec)
				So(len(rows), ShouldEqual, 2)
				So(rows[0]["member"], ShouldEqual, "alice")
				So(rows[0]["rank"], ShouldEqual, 1)
			})
		})

		Convey("When filtered by category", func() {
			rec := f.do(http.MethodGet, "/leaderboard?category=governance&page_size=1", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			rows := decodeBody[[]map[string]any](rec)
			So(len(rows), ShouldEqual, 1)
			So(rows[0]["score"], ShouldEqual, 200)
		})

		Convey("When the category is unknown", func() {
			rec := f.do(http.MethodGet, "/leaderboard?category=vibes", "", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the page size is zero", func() {
			rec := f.do(http.MethodGet, "/leaderboard?page_size=0", "", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a rank is read", func() {
			rec := f.do(http.MethodGet, "/rank/bob", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			row := decodeBody[map[string]any](rec)
			So(row["rank"], ShouldEqual, 2)
		})
	})
}

func TestCertificateEndpoints(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()

		Convey("When a certificate is exported and sent back for verification", func() {
			rec := f.do(http.MethodGet, "/certificates/alice", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			cert := decodeBody[map[string]any](rec)

			check := f.do(http.MethodPost, "/certificates/verify", "", cert)
			So(check.Code, ShouldEqual, http.StatusOK)

			Convey("Then the round trip verifies", func() {
				verdict := decodeBody[map[string]bool](check)
				So(verdict["valid"], ShouldBeTrue)
			})

			Convey("And a tampered copy does not", func() {
				cert["total_score"] = 999999
				check := f.do(http.MethodPost, "/certificates/verify", "", cert)
				So(check.Code, ShouldEqual, http.StatusOK)
				verdict := decodeBody[map[string]bool](check)
				So(verdict["valid"], ShouldBeFalse)
			})
		})

		Convey("When the signature is malformed", func() {
			rec := f.do(http.MethodGet, "/certificates/alice", "", nil)
			cert := decodeBody[map[string]any](rec)
			cert["signature"] = "zz"
			check := f.do(http.MethodPost, "/certificates/verify", "", cert)
			So(check.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAdminEndpoints(t *testing.T) {
	Convey("Given a wired server", t, func() {
		f := newFixture()

		Convey("When the config is read", func() {
			rec := f.do(http.MethodGet, "/admin/config", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decodeBody[map[string]any](rec)
			So(body["admin"], ShouldEqual, "admin")
			So(body["daily_vote_limit"], ShouldEqual, 10)
		})

		Convey("When the admin patches the config", func() {
			rec := f.do(http.MethodPatch, "/admin/config", "admin", map[string]any{"voting_cooldown": 30})
			So(rec.Code, ShouldEqual, http.StatusOK)

			got := f.do(http.MethodGet, "/admin/config", "", nil)
			body := decodeBody[map[string]any](got)
			So(body["voting_cooldown"], ShouldEqual, 30)
		})

		Convey("When a non-admin patches the config", func() {
			rec := f.do(http.MethodPatch, "/admin/config", "alice", map[string]any{"voting_cooldown": 30})
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When the admin pauses the system", func() {
			rec := f.do(http.MethodPost, "/admin/pause", "admin", map[string]bool{"paused": true})
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then member mutations return 409", func() {
				vote := map[string]any{"target": "bob", "upvote": true, "category": "governance", "weight": 1}
				rec := f.do(http.MethodPost, "/votes", "alice", vote)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the admin adjusts a score", func() {
			adj := map[string]any{"member": "bob", "category": "treasury", "delta": 40, "reason": "bounty"}
			rec := f.do(http.MethodPost, "/admin/scores", "admin", adj)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then the audit trail shows it", func() {
				rec := f.do(http.MethodGet, "/members/bob/audit", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				entries := decodeBody[[]map[string]any](rec)
				So(len(entries), ShouldEqual, 1)
				So(entries[0]["reason"], ShouldEqual, "bounty")
			})
		})

		Convey("When a bulk adjustment is applied", func() {
			body := map[string]any{"updates": []map[string]any{
				{"member": "alice", "category": "community", "delta": 10, "reason": "airdrop"},
				{"member": "bob", "category": "community", "delta": 10, "reason": "airdrop"},
			}}
			rec := f.do(http.MethodPost, "/admin/scores/bulk", "admin", body)
			So(rec.Code, ShouldEqual, http.StatusOK)
			result := decodeBody[map[string]int](rec)
			So(result["applied"], ShouldEqual, 2)
		})

		Convey("When the admin awards a badge", func() {
			body := map[string]any{"member": "alice", "achievement": "season_winner"}
			rec := f.do(http.MethodPost, "/admin/achievements", "admin", body)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then awarding it again conflicts", func() {
				rec := f.do(http.MethodPost, "/admin/achievements", "admin", body)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When a season is started and read back", func() {
			rec := f.do(http.MethodPost, "/admin/seasons", "admin", map[string]any{
				"name": "launch", "duration_days": 30, "season_id": 1,
			})
			So(rec.Code, ShouldEqual, http.StatusCreated)

			got := f.do(http.MethodGet, "/seasons/1", "", nil)
			So(got.Code, ShouldEqual, http.StatusOK)
			season := decodeBody[map[string]any](got)
			So(season["name"], ShouldEqual, "launch")
			So(season["active"], ShouldEqual, true)
			So(season["current"], ShouldEqual, true)
		})

		Convey("When a season id is not a number", func() {
			rec := f.do(http.MethodGet, "/seasons/launch", "", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When decay is applied over HTTP", func() {
			f.clock.Advance(5 * 24 * time.Hour)
			rec := f.do(http.MethodPost, "/admin/decay/alice", "admin", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)

			got := f.do(http.MethodGet, "/members/alice", "", nil)
			body := decodeBody[map[string]any](got)
			// 200 points, 10bp/day, 6 idle days: floor(200*10*6/10000) = 1
			So(body["total_score"], ShouldEqual, 199)
		})

		Convey("When the admin transfers and the old admin acts", func() {
			rec := f.do(http.MethodPost, "/admin/transfer", "admin", map[string]string{"new_admin": "alice"})
			So(rec.Code, ShouldEqual, http.StatusOK)

			rec = f.do(http.MethodPost, "/admin/pause", "admin", map[string]bool{"paused": true})
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestInitEndpoint(t *testing.T) {
	Convey("Given a server over an uninitialized service", t, func() {
		clock := clockwork.NewFakeClockAt(testEpoch)
		svc := app.New(app.WithClock(clock))
		mux := http.NewServeMux()
		api.NewServer(svc, metrics.NewManager()).Register(mux)
		f := &fixture{svc: svc, clock: clock, mux: mux}

		Convey("Then reads report the system unavailable", func() {
			rec := f.do(http.MethodGet, "/admin/config", "", nil)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When initialization is posted", func() {
			body := map[string]any{
				"voting_cooldown":        600,
				"min_account_age":        86400,
				"daily_vote_limit":       10,
				"min_reputation_to_vote": 100,
				"category_weights":       []int64{2500, 2500, 2500, 2500},
				"role_thresholds":        []int64{100, 500, 1000},
			}
			rec := f.do(http.MethodPost, "/admin/init", "root", body)

			Convey("Then the system comes up with the caller as admin", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				got := f.do(http.MethodGet, "/admin/config", "", nil)
				So(got.Code, ShouldEqual, http.StatusOK)
				cfg := decodeBody[map[string]any](got)
				So(cfg["admin"], ShouldEqual, "root")
			})

			Convey("And a second initialization conflicts", func() {
				rec := f.do(http.MethodPost, "/admin/init", "root", body)
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the weights list has the wrong length", func() {
			body := map[string]any{
				"voting_cooldown":  600,
				"daily_vote_limit": 10,
				"category_weights": []int64{5000, 5000},
				"role_thresholds":  []int64{100},
			}
			rec := f.do(http.MethodPost, "/admin/init", "root", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
