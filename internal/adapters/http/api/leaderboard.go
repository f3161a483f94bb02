package api

import (
	"net/http"
	"strconv"

	"github.com/repboard/repboard/internal/domain/reputation"
)

type entryResponse struct {
	Rank      int    `json:"rank"`
	Member    string `json:"member"`
	Score     int64  `json:"score"`
	RoleLevel int    `json:"role_level"`
}

// handleLeaderboard handles GET /leaderboard?category=&page=&page_size=.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter *reputation.Category
	if name := q.Get("category"); name != "" {
		category, ok := reputation.ParseCategory(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", reputation.ErrInvalidCategory)
			return
		}
		filter = &category
	}

	page, err := parseIntParam(q.Get("page"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pageSize, err := parseIntParam(q.Get("page_size"), 25)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	entries, err := s.svc.Leaderboard(r.Context(), filter, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			Rank:      e.Rank,
			Member:    string(e.Member),
			Score:     e.Score,
			RoleLevel: e.RoleLevel,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRank handles GET /rank/{id}.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.Rank(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{
		Rank:      entry.Rank,
		Member:    string(entry.Member),
		Score:     entry.Score,
		RoleLevel: entry.RoleLevel,
	})
}

func parseIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
