package api

import (
	"errors"
	"net/http"

	"github.com/repboard/repboard/internal/app"
	"github.com/repboard/repboard/internal/domain/reputation"
)

// voteRequest mirrors the POST /votes body. The voter is the authenticated
// caller, never a body field.
type voteRequest struct {
	Target   string `json:"target"`
	Upvote   bool   `json:"upvote"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

func (v voteRequest) validate() error {
	if v.Target == "" {
		return errors.New("missing target")
	}
	if v.Category == "" {
		return errors.New("missing category")
	}
	return nil
}

// handleCastVote handles POST /votes.
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", nil)
		return
	}
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	category, ok := reputation.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", reputation.ErrInvalidCategory)
		return
	}
	err := s.svc.CastVote(r.Context(), app.Vote{
		Voter:    caller,
		Target:   reputation.MemberID(req.Target),
		Upvote:   req.Upvote,
		Category: category,
		Weight:   req.Weight,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
