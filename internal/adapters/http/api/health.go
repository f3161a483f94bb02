package api

import "net/http"

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics serves the Prometheus registry.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Handler().ServeHTTP(w, r)
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.ServiceStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalMembers:  stats.TotalMembers,
		TotalVotes:    stats.TotalVotes,
		CurrentSeason: stats.CurrentSeason,
		DecayEnabled:  stats.DecayEnabled,
		Paused:        stats.Paused,
	})
}

type statsResponse struct {
	TotalMembers  int64  `json:"total_members"`
	TotalVotes    int64  `json:"total_votes"`
	CurrentSeason uint32 `json:"current_season"`
	DecayEnabled  bool   `json:"decay_enabled"`
	Paused        bool   `json:"paused"`
}
