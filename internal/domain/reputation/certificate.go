package reputation

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"time"
)

// Certificate is a self-contained, digest-signed snapshot of a member's
// standing at export time. It is computed on demand and never persisted.
type Certificate struct {
	Member         MemberID
	TotalScore     int64
	CategoryScores [NumCategories]int64
	Achievements   AchievementSet
	RoleLevel      int
	GeneratedAt    time.Time
	System         string
	Signature      [sha256.Size]byte
}

// NewCertificate snapshots the member and signs the snapshot.
func NewCertificate(m Member, system string, now time.Time) Certificate {
	c := Certificate{
		Member:         m.ID,
		TotalScore:     m.TotalScore,
		CategoryScores: m.CategoryPoints,
		Achievements:   m.Achievements,
		RoleLevel:      m.RoleLevel,
		GeneratedAt:    now,
		System:         system,
	}
	c.Signature = c.digest()
	return c
}

// Verify recomputes the digest over the certificate's own fields and compares
// it to the embedded signature. It detects tampering with the certificate; it
// does not re-check the fields against live ledger state.
func (c Certificate) Verify() bool {
	want := c.digest()
	return subtle.ConstantTimeCompare(want[:], c.Signature[:]) == 1
}

// digest hashes the canonical little-endian encoding of the certificate
// fields, in fixed order, with length prefixes on the variable-size strings so
// field boundaries cannot shift.
func (c Certificate) digest() [sha256.Size]byte {
	buf := make([]byte, 0, 128)
	buf = appendString(buf, string(c.Member))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.TotalScore))
	for _, s := range c.CategoryScores {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(s))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Achievements))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.RoleLevel))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(c.GeneratedAt.Unix()))
	buf = appendString(buf, c.System)
	return sha256.Sum256(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
