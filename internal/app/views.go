package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/repboard/repboard/internal/adapters/repository"
	"github.com/repboard/repboard/internal/domain/decay"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/internal/domain/streak"
)

// GetConfig returns a copy of the config record.
func (s *Service) GetConfig(ctx context.Context) (reputation.Config, error) {
	var cfg reputation.Config
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		var err error
		cfg, err = requireConfig(tx)
		return err
	})
	if err != nil {
		return reputation.Config{}, fmt.Errorf("get config: %w", err)
	}
	return cfg, nil
}

// Member returns a copy of one member record.
func (s *Service) Member(ctx context.Context, id reputation.MemberID) (reputation.Member, error) {
	var m reputation.Member
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		var err error
		m, err = tx.Member(id)
		return err
	})
	if err != nil {
		return reputation.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// Leaderboard ranks members by total score, or by one category's score when
// filter is non-nil, descending, ties broken by earliest creation. It returns
// the requested page with absolute ranks.
func (s *Service) Leaderboard(ctx context.Context, filter *reputation.Category, page, pageSize int) ([]reputation.Entry, error) {
	if pageSize <= 0 || pageSize > s.maxPageSize || page < 0 {
		return nil, fmt.Errorf("leaderboard: %w", reputation.ErrInvalidPagination)
	}
	// The offset multiplication must not wrap.
	if page > math.MaxInt/pageSize {
		return nil, fmt.Errorf("leaderboard: %w", reputation.ErrInvalidPagination)
	}
	if filter != nil && !filter.Valid() {
		return nil, fmt.Errorf("leaderboard: %w", reputation.ErrInvalidCategory)
	}
	var entries []reputation.Entry
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		members := rankMembers(tx.Members(), filter)
		start := page * pageSize
		if start >= len(members) {
			return nil
		}
		end := start + pageSize
		if end > len(members) {
			end = len(members)
		}
		entries = make([]reputation.Entry, 0, end-start)
		for i := start; i < end; i++ {
			entries = append(entries, entryFor(members[i], i, filter))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns one member's leaderboard row by total score.
func (s *Service) Rank(ctx context.Context, id reputation.MemberID) (reputation.Entry, error) {
	var entry reputation.Entry
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		if _, err := tx.Member(id); err != nil {
			return err
		}
		members := rankMembers(tx.Members(), nil)
		for i, m := range members {
			if m.ID == id {
				entry = entryFor(m, i, nil)
				return nil
			}
		}
		return reputation.ErrMemberNotFound
	})
	if err != nil {
		return reputation.Entry{}, fmt.Errorf("rank: %w", err)
	}
	return entry, nil
}

// rankMembers orders members by the ranking key descending; ties go to the
// earlier account, then to the lexically smaller id so the order is total.
func rankMembers(members []reputation.Member, filter *reputation.Category) []reputation.Member {
	key := func(m reputation.Member) int64 {
		if filter != nil {
			return m.CategoryPoints[*filter]
		}
		return m.TotalScore
	}
	sort.Slice(members, func(i, j int) bool {
		ki, kj := key(members[i]), key(members[j])
		if ki != kj {
			return ki > kj
		}
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].ID < members[j].ID
	})
	return members
}

func entryFor(m reputation.Member, index int, filter *reputation.Category) reputation.Entry {
	score := m.TotalScore
	if filter != nil {
		score = m.CategoryPoints[*filter]
	}
	return reputation.Entry{
		Rank:      index + 1,
		Member:    m.ID,
		Score:     score,
		RoleLevel: m.RoleLevel,
	}
}

// ExportCertificate builds a signed snapshot of the member's standing.
func (s *Service) ExportCertificate(ctx context.Context, id reputation.MemberID) (reputation.Certificate, error) {
	m, err := s.Member(ctx, id)
	if err != nil {
		return reputation.Certificate{}, fmt.Errorf("export certificate: %w", err)
	}
	return reputation.NewCertificate(m, s.systemID, s.clock.Now()), nil
}

// VerifyCertificate checks a certificate's embedded signature against its own
// fields. It does not consult live ledger state.
func (s *Service) VerifyCertificate(cert reputation.Certificate) bool {
	return cert.Verify()
}

// PreviewDecay reports the erosion that would apply to the member right now,
// without mutating anything.
func (s *Service) PreviewDecay(ctx context.Context, id reputation.MemberID) (decay.Preview, error) {
	now := s.clock.Now()
	var preview decay.Preview
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		m, err := tx.Member(id)
		if err != nil {
			return err
		}
		preview = decay.Compute(m, cfg, now)
		return nil
	})
	if err != nil {
		return decay.Preview{}, fmt.Errorf("preview decay: %w", err)
	}
	return preview, nil
}

// StreakInfo reports the member's streak standing.
func (s *Service) StreakInfo(ctx context.Context, id reputation.MemberID) (streak.Info, error) {
	m, err := s.Member(ctx, id)
	if err != nil {
		return streak.Info{}, fmt.Errorf("streak info: %w", err)
	}
	return streak.Describe(m, s.clock.Now()), nil
}

// AchievementProgress reports per-achievement progress for the member.
func (s *Service) AchievementProgress(ctx context.Context, id reputation.MemberID) ([]reputation.Progress, error) {
	m, err := s.Member(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("achievement progress: %w", err)
	}
	return m.AchievementProgress(), nil
}

// AvailableRoleUnlocks lists the role levels the member could claim now.
func (s *Service) AvailableRoleUnlocks(ctx context.Context, id reputation.MemberID) ([]int, error) {
	var levels []int
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		m, err := tx.Member(id)
		if err != nil {
			return err
		}
		levels = m.ClaimableLevels(cfg.RoleThresholds)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("available role unlocks: %w", err)
	}
	return levels, nil
}

// AuditLog returns the admin adjustment history for a member, oldest first.
func (s *Service) AuditLog(ctx context.Context, id reputation.MemberID) ([]reputation.AuditEntry, error) {
	var entries []reputation.AuditEntry
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		if _, err := tx.Member(id); err != nil {
			return err
		}
		entries = tx.AuditLog(id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	return entries, nil
}

// SeasonView is the read shape for one season.
type SeasonView struct {
	ID            uint32
	Name          string
	StartedAt     time.Time
	DurationDays  int
	EndsAt        time.Time
	Active        bool
	DaysRemaining int64
	Current       bool
}

// SeasonInfo returns one season with activity computed against the clock.
func (s *Service) SeasonInfo(ctx context.Context, id uint32) (SeasonView, error) {
	now := s.clock.Now()
	var view SeasonView
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		season, ok := tx.Season(id)
		if !ok {
			return reputation.ErrSeasonNotFound
		}
		endsAt := season.EndsAt()
		view = SeasonView{
			ID:           season.ID,
			Name:         season.Name,
			StartedAt:    season.StartedAt,
			DurationDays: season.DurationDays,
			EndsAt:       endsAt,
			Active:       now.Before(endsAt),
			Current:      cfg.CurrentSeason == season.ID,
		}
		if view.Active {
			view.DaysRemaining = int64(endsAt.Sub(now) / (24 * time.Hour))
		}
		return nil
	})
	if err != nil {
		return SeasonView{}, fmt.Errorf("season info: %w", err)
	}
	return view, nil
}

// Stats is a coarse operational summary for the stats endpoint.
type Stats struct {
	TotalMembers  int64
	TotalVotes    int64
	CurrentSeason uint32
	DecayEnabled  bool
	Paused        bool
}

// ServiceStats summarizes ledger state.
func (s *Service) ServiceStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		stats = Stats{
			TotalMembers:  cfg.TotalMembers,
			CurrentSeason: cfg.CurrentSeason,
			DecayEnabled:  cfg.DecayEnabled,
			Paused:        cfg.Paused,
		}
		for _, m := range tx.Members() {
			stats.TotalVotes += m.VotesCast
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}
