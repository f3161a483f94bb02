package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/repboard/repboard/internal/app"
	"github.com/repboard/repboard/internal/domain/reputation"
)

// adminCaller extracts the caller for admin routes. Authorization itself is
// enforced by the service against the stored admin identity.
func (s *Server) adminCaller(w http.ResponseWriter, r *http.Request) (reputation.MemberID, bool) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", nil)
	}
	return caller, ok
}

// handleInitialize handles POST /admin/init.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		VotingCooldown      int64   `json:"voting_cooldown"`
		MinAccountAge       int64   `json:"min_account_age"`
		DailyVoteLimit      int     `json:"daily_vote_limit"`
		MinReputationToVote int64   `json:"min_reputation_to_vote"`
		CategoryWeights     []int64 `json:"category_weights"`
		RoleThresholds      []int64 `json:"role_thresholds"`
		DecayRate           int64   `json:"decay_rate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if len(req.CategoryWeights) != reputation.NumCategories {
		writeError(w, http.StatusBadRequest, "bad_request", reputation.ErrInvalidCategoryWeight)
		return
	}
	params := app.InitParams{
		VotingCooldown:      req.VotingCooldown,
		MinAccountAge:       req.MinAccountAge,
		DailyVoteLimit:      req.DailyVoteLimit,
		MinReputationToVote: req.MinReputationToVote,
		RoleThresholds:      req.RoleThresholds,
		DecayRate:           req.DecayRate,
	}
	copy(params.CategoryWeights[:], req.CategoryWeights)
	if err := s.svc.InitializeSystem(r.Context(), params, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "initialized"})
}

// handleGetConfig handles GET /admin/config.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.GetConfig(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admin":                  string(cfg.Admin),
		"voting_cooldown":        cfg.VotingCooldown,
		"min_account_age":        cfg.MinAccountAge,
		"daily_vote_limit":       cfg.DailyVoteLimit,
		"min_reputation_to_vote": cfg.MinReputationToVote,
		"category_weights":       cfg.CategoryWeights[:],
		"role_thresholds":        cfg.RoleThresholds,
		"current_season":         cfg.CurrentSeason,
		"total_members":          cfg.TotalMembers,
		"decay_enabled":          cfg.DecayEnabled,
		"decay_rate":             cfg.DecayRate,
		"paused":                 cfg.Paused,
		"initialized_at":         cfg.InitializedAt,
	})
}

// handleUpdateConfig handles PATCH /admin/config. Absent fields stay
// unchanged.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		VotingCooldown      *int64   `json:"voting_cooldown"`
		MinAccountAge       *int64   `json:"min_account_age"`
		DailyVoteLimit      *int     `json:"daily_vote_limit"`
		MinReputationToVote *int64   `json:"min_reputation_to_vote"`
		CategoryWeights     *[]int64 `json:"category_weights"`
		RoleThresholds      []int64  `json:"role_thresholds"`
		DecayEnabled        *bool    `json:"decay_enabled"`
		DecayRate           *int64   `json:"decay_rate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	upd := reputation.ConfigUpdate{
		VotingCooldown:      req.VotingCooldown,
		MinAccountAge:       req.MinAccountAge,
		DailyVoteLimit:      req.DailyVoteLimit,
		MinReputationToVote: req.MinReputationToVote,
		RoleThresholds:      req.RoleThresholds,
		DecayEnabled:        req.DecayEnabled,
		DecayRate:           req.DecayRate,
	}
	if req.CategoryWeights != nil {
		if len(*req.CategoryWeights) != reputation.NumCategories {
			writeError(w, http.StatusBadRequest, "bad_request", reputation.ErrInvalidCategoryWeight)
			return
		}
		var weights [reputation.NumCategories]int64
		copy(weights[:], *req.CategoryWeights)
		upd.CategoryWeights = &weights
	}
	if err := s.svc.UpdateConfig(r.Context(), upd, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleTransferAdmin handles POST /admin/transfer.
func (s *Server) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		NewAdmin string `json:"new_admin"`
	}
	if err := decodeJSON(r, &req); err != nil || req.NewAdmin == "" {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.svc.TransferAdmin(r.Context(), reputation.MemberID(req.NewAdmin), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// handleSetPaused handles POST /admin/pause.
func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.svc.SetPaused(r.Context(), req.Paused, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

type scoreAdjustmentRequest struct {
	Member   string `json:"member"`
	Category string `json:"category"`
	Delta    int64  `json:"delta"`
	Reason   string `json:"reason"`
}

func (req scoreAdjustmentRequest) toDomain() (app.ScoreAdjustment, error) {
	category, ok := reputation.ParseCategory(req.Category)
	if !ok {
		return app.ScoreAdjustment{}, reputation.ErrInvalidCategory
	}
	return app.ScoreAdjustment{
		Member:   reputation.MemberID(req.Member),
		Category: category,
		Delta:    req.Delta,
		Reason:   req.Reason,
	}, nil
}

// handleAdjustScore handles POST /admin/scores.
func (s *Server) handleAdjustScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req scoreAdjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	adj, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.svc.AdjustScore(r.Context(), adj, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// handleBulkAdjustScore handles POST /admin/scores/bulk.
func (s *Server) handleBulkAdjustScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		Updates []scoreAdjustmentRequest `json:"updates"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	adjs := make([]app.ScoreAdjustment, 0, len(req.Updates))
	for _, u := range req.Updates {
		adj, err := u.toDomain()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		adjs = append(adjs, adj)
	}
	if err := s.svc.BulkAdjustScore(r.Context(), adjs, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": len(adjs)})
}

// handleAwardAchievement handles POST /admin/achievements.
func (s *Server) handleAwardAchievement(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		Member      string `json:"member"`
		Achievement string `json:"achievement"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	achievement, ok := reputation.ParseAchievement(req.Achievement)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", reputation.ErrInvalidAchievement)
		return
	}
	if err := s.svc.AwardAchievement(r.Context(), reputation.MemberID(req.Member), achievement, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "awarded"})
}

// handleApplyDecay handles POST /admin/decay/{id}.
func (s *Server) handleApplyDecay(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	member := reputation.MemberID(r.PathValue("id"))
	if err := s.svc.ApplyDecay(r.Context(), member, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// handleResetDecayTimer handles POST /admin/decay/{id}/reset.
func (s *Server) handleResetDecayTimer(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	member := reputation.MemberID(r.PathValue("id"))
	if err := s.svc.ResetDecayTimer(r.Context(), member, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleStartSeason handles POST /admin/seasons.
func (s *Server) handleStartSeason(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.adminCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		Name         string `json:"name"`
		DurationDays int    `json:"duration_days"`
		SeasonID     uint32 `json:"season_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := s.svc.StartSeason(r.Context(), req.Name, req.DurationDays, req.SeasonID, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"season_id": req.SeasonID, "name": req.Name})
}

// handleSeasonInfo handles GET /seasons/{id}.
func (s *Server) handleSeasonInfo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := s.svc.SeasonInfo(r.Context(), uint32(id))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasonResponse{
		ID:            view.ID,
		Name:          view.Name,
		StartedAt:     view.StartedAt,
		DurationDays:  view.DurationDays,
		EndsAt:        view.EndsAt,
		Active:        view.Active,
		DaysRemaining: view.DaysRemaining,
		Current:       view.Current,
	})
}

type seasonResponse struct {
	ID            uint32    `json:"id"`
	Name          string    `json:"name"`
	StartedAt     time.Time `json:"started_at"`
	DurationDays  int       `json:"duration_days"`
	EndsAt        time.Time `json:"ends_at"`
	Active        bool      `json:"active"`
	DaysRemaining int64     `json:"days_remaining"`
	Current       bool      `json:"current"`
}
