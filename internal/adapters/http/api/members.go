package api

import (
	"net/http"
	"time"

	"github.com/repboard/repboard/internal/domain/reputation"
)

type memberResponse struct {
	ID             string           `json:"id"`
	CategoryPoints map[string]int64 `json:"category_points"`
	TotalScore     int64            `json:"total_score"`
	RoleLevel      int              `json:"role_level"`
	Achievements   []string         `json:"achievements"`
	CurrentStreak  int              `json:"current_streak"`
	LongestStreak  int              `json:"longest_streak"`
	VotesCast      int64            `json:"votes_cast"`
	LastActivity   time.Time        `json:"last_activity"`
	CreatedAt      time.Time        `json:"created_at"`
}

func toMemberResponse(m reputation.Member) memberResponse {
	points := make(map[string]int64, reputation.NumCategories)
	for c := reputation.Category(0); c < reputation.NumCategories; c++ {
		points[c.String()] = m.CategoryPoints[c]
	}
	achievements := make([]string, 0)
	for _, a := range m.Achievements.List() {
		achievements = append(achievements, a.String())
	}
	return memberResponse{
		ID:             string(m.ID),
		CategoryPoints: points,
		TotalScore:     m.TotalScore,
		RoleLevel:      m.RoleLevel,
		Achievements:   achievements,
		CurrentStreak:  m.CurrentStreak,
		LongestStreak:  m.LongestStreak,
		VotesCast:      m.VotesCast,
		LastActivity:   m.LastActivity,
		CreatedAt:      m.CreatedAt,
	}
}

// handleRegisterMember handles POST /members. The caller registers itself.
func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", nil)
		return
	}
	if err := s.svc.RegisterMember(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	member, err := s.svc.Member(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

// handleGetMember handles GET /members/{id}.
func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.svc.Member(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// handleAchievementProgress handles GET /members/{id}/achievements.
func (s *Server) handleAchievementProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.svc.AchievementProgress(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type progressResponse struct {
		Achievement string `json:"achievement"`
		Earned      bool   `json:"earned"`
		Current     int64  `json:"current"`
		Required    int64  `json:"required"`
		Percent     int    `json:"percent"`
	}
	out := make([]progressResponse, 0, len(progress))
	for _, p := range progress {
		out = append(out, progressResponse{
			Achievement: p.Achievement.String(),
			Earned:      p.Earned,
			Current:     p.Current,
			Required:    p.Required,
			Percent:     p.Percent(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStreakInfo handles GET /members/{id}/streak.
func (s *Server) handleStreakInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.StreakInfo(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member":              string(info.Member),
		"current_streak":      info.CurrentStreak,
		"longest_streak":      info.LongestStreak,
		"days_since_activity": info.DaysSinceActivity,
		"at_risk":             info.AtRisk,
		"broken":              info.Broken,
		"current_bonus":       info.CurrentBonus,
		"next_day_bonus":      info.NextDayBonus,
		"last_activity":       info.LastActivity,
	})
}

// handleTouchStreak handles POST /members/{id}/streak. Only the member itself
// may record activity.
func (s *Server) handleTouchStreak(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", nil)
		return
	}
	if string(caller) != r.PathValue("id") {
		writeError(w, http.StatusForbidden, "forbidden", reputation.ErrUnauthorized)
		return
	}
	result, err := s.svc.TouchStreak(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current_streak": result.CurrentStreak,
		"longest_streak": result.LongestStreak,
		"extended":       result.Extended,
		"broken":         result.Broken,
		"bonus_points":   result.BonusPoints,
	})
}

// handleAvailableRoles handles GET /members/{id}/roles.
func (s *Server) handleAvailableRoles(w http.ResponseWriter, r *http.Request) {
	levels, err := s.svc.AvailableRoleUnlocks(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if levels == nil {
		levels = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"claimable_levels": levels})
}

// handleClaimRole handles POST /members/{id}/roles.
func (s *Server) handleClaimRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", nil)
		return
	}
	var req struct {
		Level int `json:"level"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	member := reputation.MemberID(r.PathValue("id"))
	if err := s.svc.ClaimRoleUnlock(r.Context(), member, req.Level, caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": string(member), "role_level": req.Level})
}

// handleAuditLog handles GET /members/{id}/audit.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.AuditLog(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type auditResponse struct {
		ID        string    `json:"id"`
		Category  string    `json:"category"`
		Delta     int64     `json:"delta"`
		Reason    string    `json:"reason"`
		Actor     string    `json:"actor"`
		AppliedAt time.Time `json:"applied_at"`
	}
	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			ID:        e.ID,
			Category:  e.Category.String(),
			Delta:     e.Delta,
			Reason:    e.Reason,
			Actor:     string(e.Actor),
			AppliedAt: e.AppliedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreviewDecay handles GET /members/{id}/decay.
func (s *Server) handlePreviewDecay(w http.ResponseWriter, r *http.Request) {
	preview, err := s.svc.PreviewDecay(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	amounts := make(map[string]int64, reputation.NumCategories)
	for c := reputation.Category(0); c < reputation.NumCategories; c++ {
		amounts[c.String()] = preview.Amounts[c]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member":       string(preview.Member),
		"elapsed_days": preview.ElapsedDays,
		"amounts":      amounts,
		"total":        preview.Total(),
		"will_decay":   preview.WillDecay,
	})
}
