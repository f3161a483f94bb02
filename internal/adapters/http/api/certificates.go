package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/repboard/repboard/internal/domain/reputation"
)

// certificateBody is the wire form of a reputation certificate. Scores ride
// in category order; the signature is hex encoded.
type certificateBody struct {
	Member         string    `json:"member"`
	TotalScore     int64     `json:"total_score"`
	CategoryScores []int64   `json:"category_scores"`
	Achievements   uint64    `json:"achievements"`
	RoleLevel      int       `json:"role_level"`
	GeneratedAt    time.Time `json:"generated_at"`
	System         string    `json:"system"`
	Signature      string    `json:"signature"`
}

func toCertificateBody(c reputation.Certificate) certificateBody {
	return certificateBody{
		Member:         string(c.Member),
		TotalScore:     c.TotalScore,
		CategoryScores: c.CategoryScores[:],
		Achievements:   uint64(c.Achievements),
		RoleLevel:      c.RoleLevel,
		GeneratedAt:    c.GeneratedAt,
		System:         c.System,
		Signature:      hex.EncodeToString(c.Signature[:]),
	}
}

func (b certificateBody) toDomain() (reputation.Certificate, error) {
	if len(b.CategoryScores) != reputation.NumCategories {
		return reputation.Certificate{}, errors.New("category_scores must have four entries")
	}
	sig, err := hex.DecodeString(b.Signature)
	if err != nil || len(sig) != sha256.Size {
		return reputation.Certificate{}, errors.New("malformed signature")
	}
	c := reputation.Certificate{
		Member:       reputation.MemberID(b.Member),
		TotalScore:   b.TotalScore,
		Achievements: reputation.AchievementSet(b.Achievements),
		RoleLevel:    b.RoleLevel,
		GeneratedAt:  b.GeneratedAt,
		System:       b.System,
	}
	copy(c.CategoryScores[:], b.CategoryScores)
	copy(c.Signature[:], sig)
	return c, nil
}

// handleExportCertificate handles GET /certificates/{id}.
func (s *Server) handleExportCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := s.svc.ExportCertificate(r.Context(), reputation.MemberID(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCertificateBody(cert))
}

// handleVerifyCertificate handles POST /certificates/verify.
func (s *Server) handleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	var body certificateBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	cert, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.svc.VerifyCertificate(cert)})
}
