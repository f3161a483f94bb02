// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/repboard/repboard/internal/app"
	"github.com/repboard/repboard/internal/domain/decay"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/internal/domain/streak"
	"github.com/repboard/repboard/pkg/metrics"
)

// Service bundles the ledger operations the HTTP layer exposes. Using an
// interface keeps the handler layer loosely coupled to the app package.
type Service interface {
	InitializeSystem(ctx context.Context, p app.InitParams, caller reputation.MemberID) error
	UpdateConfig(ctx context.Context, upd reputation.ConfigUpdate, caller reputation.MemberID) error
	TransferAdmin(ctx context.Context, newAdmin, caller reputation.MemberID) error
	SetPaused(ctx context.Context, paused bool, caller reputation.MemberID) error
	GetConfig(ctx context.Context) (reputation.Config, error)

	RegisterMember(ctx context.Context, caller reputation.MemberID) error
	Member(ctx context.Context, id reputation.MemberID) (reputation.Member, error)
	CastVote(ctx context.Context, v app.Vote) error
	ClaimRoleUnlock(ctx context.Context, member reputation.MemberID, level int, caller reputation.MemberID) error
	AvailableRoleUnlocks(ctx context.Context, id reputation.MemberID) ([]int, error)
	TouchStreak(ctx context.Context, caller reputation.MemberID) (streak.Result, error)
	StreakInfo(ctx context.Context, id reputation.MemberID) (streak.Info, error)
	AchievementProgress(ctx context.Context, id reputation.MemberID) ([]reputation.Progress, error)

	AdjustScore(ctx context.Context, adj app.ScoreAdjustment, caller reputation.MemberID) error
	BulkAdjustScore(ctx context.Context, adjs []app.ScoreAdjustment, caller reputation.MemberID) error
	AwardAchievement(ctx context.Context, member reputation.MemberID, a reputation.Achievement, caller reputation.MemberID) error
	AuditLog(ctx context.Context, id reputation.MemberID) ([]reputation.AuditEntry, error)

	PreviewDecay(ctx context.Context, id reputation.MemberID) (decay.Preview, error)
	ApplyDecay(ctx context.Context, member, caller reputation.MemberID) error
	ResetDecayTimer(ctx context.Context, member, caller reputation.MemberID) error

	StartSeason(ctx context.Context, name string, durationDays int, id uint32, caller reputation.MemberID) error
	SeasonInfo(ctx context.Context, id uint32) (app.SeasonView, error)

	Leaderboard(ctx context.Context, filter *reputation.Category, page, pageSize int) ([]reputation.Entry, error)
	Rank(ctx context.Context, id reputation.MemberID) (reputation.Entry, error)
	ExportCertificate(ctx context.Context, id reputation.MemberID) (reputation.Certificate, error)
	VerifyCertificate(cert reputation.Certificate) bool
	ServiceStats(ctx context.Context) (app.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	svc     Service
	metrics *metrics.Manager
}

// NewServer creates a new API server.
func NewServer(svc Service, m *metrics.Manager) *Server {
	return &Server{svc: svc, metrics: m}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	route := func(pattern string, name string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.observed(name, h))
	}

	route("GET /healthz", "healthz", s.handleHealth)
	route("GET /metrics", "metrics", s.handleMetrics)
	route("GET /stats", "stats", s.handleStats)

	route("POST /members", "members_register", s.handleRegisterMember)
	route("GET /members/{id}", "members_get", s.handleGetMember)
	route("GET /members/{id}/achievements", "members_achievements", s.handleAchievementProgress)
	route("GET /members/{id}/streak", "members_streak", s.handleStreakInfo)
	route("POST /members/{id}/streak", "members_streak_touch", s.handleTouchStreak)
	route("GET /members/{id}/roles", "members_roles", s.handleAvailableRoles)
	route("POST /members/{id}/roles", "members_roles_claim", s.handleClaimRole)
	route("GET /members/{id}/audit", "members_audit", s.handleAuditLog)
	route("GET /members/{id}/decay", "members_decay_preview", s.handlePreviewDecay)

	route("POST /votes", "votes", s.handleCastVote)

	route("GET /leaderboard", "leaderboard", s.handleLeaderboard)
	route("GET /rank/{id}", "rank", s.handleRank)

	route("GET /certificates/{id}", "certificates_export", s.handleExportCertificate)
	route("POST /certificates/verify", "certificates_verify", s.handleVerifyCertificate)

	route("GET /seasons/{id}", "seasons_get", s.handleSeasonInfo)

	route("GET /admin/config", "admin_config_get", s.handleGetConfig)
	route("POST /admin/init", "admin_init", s.handleInitialize)
	route("PATCH /admin/config", "admin_config_update", s.handleUpdateConfig)
	route("POST /admin/transfer", "admin_transfer", s.handleTransferAdmin)
	route("POST /admin/pause", "admin_pause", s.handleSetPaused)
	route("POST /admin/scores", "admin_scores", s.handleAdjustScore)
	route("POST /admin/scores/bulk", "admin_scores_bulk", s.handleBulkAdjustScore)
	route("POST /admin/achievements", "admin_achievements", s.handleAwardAchievement)
	route("POST /admin/decay/{id}", "admin_decay_apply", s.handleApplyDecay)
	route("POST /admin/decay/{id}/reset", "admin_decay_reset", s.handleResetDecayTimer)
	route("POST /admin/seasons", "admin_seasons", s.handleStartSeason)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates ledger errors into HTTP statuses: validation
// errors map to 400, authorization to 403, missing records to 404, and
// eligibility/state rejections to 409.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case isOneOf(err,
		reputation.ErrInvalidVoteWeight,
		reputation.ErrInvalidCategory,
		reputation.ErrInvalidAchievement,
		reputation.ErrInvalidCategoryWeight,
		reputation.ErrInvalidRoleThresholds,
		reputation.ErrInvalidRoleLevel,
		reputation.ErrInvalidDailyLimit,
		reputation.ErrStringTooLong,
		reputation.ErrInvalidPagination,
		reputation.ErrBulkTooLarge,
		reputation.ErrInvalidSeasonDuration):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
	case isOneOf(err, reputation.ErrUnauthorizedAdmin, reputation.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case isOneOf(err, reputation.ErrMemberNotFound, reputation.ErrSeasonNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, reputation.ErrNotInitialized):
		writeError(w, http.StatusServiceUnavailable, "not_initialized", err)
	case isOneOf(err,
		reputation.ErrAlreadyInitialized,
		reputation.ErrSeasonExists,
		reputation.ErrCannotVoteOnSelf,
		reputation.ErrInsufficientRep,
		reputation.ErrAccountTooNew,
		reputation.ErrCooldownNotExpired,
		reputation.ErrDailyLimitExceeded,
		reputation.ErrRoleNotUnlockable,
		reputation.ErrAchievementAwarded,
		reputation.ErrNegativeReputation,
		reputation.ErrDecayDisabled,
		reputation.ErrNoActivityToDecay,
		reputation.ErrSystemPaused):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func isOneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// callerID extracts the authenticated caller set by the upstream auth proxy.
func callerID(r *http.Request) (reputation.MemberID, bool) {
	id := r.Header.Get("X-Caller-ID")
	if id == "" {
		return "", false
	}
	return reputation.MemberID(id), true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
