// Package repository provides the in-memory record store backing the
// reputation ledger. Records are read and written through transactions so a
// failed operation leaves nothing behind.
package repository

import (
	"context"
	"sync"

	"github.com/repboard/repboard/internal/domain/reputation"
)

// PairKey identifies the voting history for one ordered (voter, target) pair.
type PairKey struct {
	Voter  reputation.MemberID
	Target reputation.MemberID
}

// Store holds the config singleton, member records, pairwise voting records,
// seasons, and the admin audit log. A single writer lock linearizes mutating
// transactions, which also serializes concurrent votes on the same pair.
type Store struct {
	mu sync.RWMutex

	config  *reputation.Config
	members map[reputation.MemberID]reputation.Member
	votes   map[PairKey]reputation.VotingRecord
	seasons map[uint32]reputation.Season
	audit   map[reputation.MemberID][]reputation.AuditEntry
}

// New creates an empty store.
func New(opts ...Option) *Store {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		members: make(map[reputation.MemberID]reputation.Member, cfg.memberCapacity),
		votes:   make(map[PairKey]reputation.VotingRecord, cfg.voteCapacity),
		seasons: make(map[uint32]reputation.Season),
		audit:   make(map[reputation.MemberID][]reputation.AuditEntry),
	}
}

// View runs fn with read access to a consistent snapshot. Writes inside a view
// panic with ErrReadOnlyTx.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{store: s})
}

// Update runs fn in a writable transaction. Writes are staged on the
// transaction and applied only if fn returns nil; any error discards every
// staged write, so an operation commits entirely or not at all.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{store: s, writable: true}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Tx is a single-operation view over the store. Reads see committed state
// overlaid with this transaction's own staged writes.
type Tx struct {
	store    *Store
	writable bool

	config       *reputation.Config
	stagedMember map[reputation.MemberID]reputation.Member
	stagedVote   map[PairKey]reputation.VotingRecord
	stagedSeason map[uint32]reputation.Season
	stagedAudit  []reputation.AuditEntry
}

// Config returns a copy of the config record, or false if the system has not
// been initialized.
func (tx *Tx) Config() (reputation.Config, bool) {
	if tx.config != nil {
		return cloneConfig(*tx.config), true
	}
	if tx.store.config == nil {
		return reputation.Config{}, false
	}
	return cloneConfig(*tx.store.config), true
}

// SetConfig stages the config record.
func (tx *Tx) SetConfig(c reputation.Config) {
	tx.mustWrite()
	c = cloneConfig(c)
	tx.config = &c
}

// Member returns a copy of the member record.
func (tx *Tx) Member(id reputation.MemberID) (reputation.Member, error) {
	if m, ok := tx.stagedMember[id]; ok {
		return m, nil
	}
	m, ok := tx.store.members[id]
	if !ok {
		return reputation.Member{}, reputation.ErrMemberNotFound
	}
	return m, nil
}

// HasMember reports whether a record exists for id.
func (tx *Tx) HasMember(id reputation.MemberID) bool {
	if _, ok := tx.stagedMember[id]; ok {
		return true
	}
	_, ok := tx.store.members[id]
	return ok
}

// SetMember stages the member record.
func (tx *Tx) SetMember(m reputation.Member) {
	tx.mustWrite()
	if tx.stagedMember == nil {
		tx.stagedMember = make(map[reputation.MemberID]reputation.Member)
	}
	tx.stagedMember[m.ID] = m
}

// Members returns copies of every member record, staged writes included.
func (tx *Tx) Members() []reputation.Member {
	out := make([]reputation.Member, 0, len(tx.store.members)+len(tx.stagedMember))
	for id, m := range tx.store.members {
		if _, staged := tx.stagedMember[id]; staged {
			continue
		}
		out = append(out, m)
	}
	for _, m := range tx.stagedMember {
		out = append(out, m)
	}
	return out
}

// VotingRecord returns the history for the (voter, target) pair, or false if
// the pair has never voted.
func (tx *Tx) VotingRecord(voter, target reputation.MemberID) (reputation.VotingRecord, bool) {
	key := PairKey{Voter: voter, Target: target}
	if vr, ok := tx.stagedVote[key]; ok {
		return vr, true
	}
	vr, ok := tx.store.votes[key]
	return vr, ok
}

// SetVotingRecord stages the pair's voting record.
func (tx *Tx) SetVotingRecord(vr reputation.VotingRecord) {
	tx.mustWrite()
	if tx.stagedVote == nil {
		tx.stagedVote = make(map[PairKey]reputation.VotingRecord)
	}
	tx.stagedVote[PairKey{Voter: vr.Voter, Target: vr.Target}] = vr
}

// Season returns the season record for id.
func (tx *Tx) Season(id uint32) (reputation.Season, bool) {
	if sn, ok := tx.stagedSeason[id]; ok {
		return sn, true
	}
	sn, ok := tx.store.seasons[id]
	return sn, ok
}

// SetSeason stages a season record.
func (tx *Tx) SetSeason(sn reputation.Season) {
	tx.mustWrite()
	if tx.stagedSeason == nil {
		tx.stagedSeason = make(map[uint32]reputation.Season)
	}
	tx.stagedSeason[sn.ID] = sn
}

// AppendAudit stages an audit entry.
func (tx *Tx) AppendAudit(e reputation.AuditEntry) {
	tx.mustWrite()
	tx.stagedAudit = append(tx.stagedAudit, e)
}

// AuditLog returns the audit entries for a member, oldest first, staged
// entries included.
func (tx *Tx) AuditLog(member reputation.MemberID) []reputation.AuditEntry {
	src := tx.store.audit[member]
	out := make([]reputation.AuditEntry, len(src))
	copy(out, src)
	for _, e := range tx.stagedAudit {
		if e.Member == member {
			out = append(out, e)
		}
	}
	return out
}

func (tx *Tx) mustWrite() {
	if !tx.writable {
		panic(ErrReadOnlyTx)
	}
}

func (tx *Tx) commit() {
	if tx.config != nil {
		c := cloneConfig(*tx.config)
		tx.store.config = &c
	}
	for id, m := range tx.stagedMember {
		tx.store.members[id] = m
	}
	for key, vr := range tx.stagedVote {
		tx.store.votes[key] = vr
	}
	for id, sn := range tx.stagedSeason {
		tx.store.seasons[id] = sn
	}
	for _, e := range tx.stagedAudit {
		tx.store.audit[e.Member] = append(tx.store.audit[e.Member], e)
	}
}

// cloneConfig deep-copies the one reference field so callers never alias the
// stored threshold slice.
func cloneConfig(c reputation.Config) reputation.Config {
	thresholds := make([]int64, len(c.RoleThresholds))
	copy(thresholds, c.RoleThresholds)
	c.RoleThresholds = thresholds
	return c
}
