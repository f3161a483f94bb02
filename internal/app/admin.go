package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/repboard/repboard/internal/adapters/repository"
	"github.com/repboard/repboard/internal/domain/decay"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/pkg/logger"
)

// InitParams carries the tunables for system initialization.
type InitParams struct {
	VotingCooldown      int64
	MinAccountAge       int64
	DailyVoteLimit      int
	MinReputationToVote int64
	CategoryWeights     [reputation.NumCategories]int64
	RoleThresholds      []int64
	DecayRate           int64 // basis points per day; 0 keeps the default
}

// defaultDecayRate is 0.1% per day of inactivity, in basis points.
const defaultDecayRate = 10

// InitializeSystem creates the config singleton with caller as admin. It can
// succeed at most once.
func (s *Service) InitializeSystem(ctx context.Context, p InitParams, caller reputation.MemberID) error {
	now := s.clock.Now()
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		if _, ok := tx.Config(); ok {
			return reputation.ErrAlreadyInitialized
		}
		if err := reputation.ValidateCategoryWeights(p.CategoryWeights); err != nil {
			return err
		}
		if err := reputation.ValidateRoleThresholds(p.RoleThresholds); err != nil {
			return err
		}
		if p.DailyVoteLimit <= 0 {
			return reputation.ErrInvalidDailyLimit
		}
		rate := p.DecayRate
		if rate == 0 {
			rate = defaultDecayRate
		}
		tx.SetConfig(reputation.Config{
			Admin:               caller,
			VotingCooldown:      p.VotingCooldown,
			MinAccountAge:       p.MinAccountAge,
			DailyVoteLimit:      p.DailyVoteLimit,
			MinReputationToVote: p.MinReputationToVote,
			CategoryWeights:     p.CategoryWeights,
			RoleThresholds:      p.RoleThresholds,
			CurrentSeason:       0,
			TotalMembers:        0,
			DecayEnabled:        true,
			DecayRate:           rate,
			InitializedAt:       now,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("initialize system: %w", err)
	}
	s.log.Info(ctx, "reputation system initialized", logger.String("admin", string(caller)))
	return nil
}

// UpdateConfig applies the non-nil fields of upd. Weight and threshold
// changes are re-validated; an invalid update leaves the config unchanged.
func (s *Service) UpdateConfig(ctx context.Context, upd reputation.ConfigUpdate, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if upd.VotingCooldown != nil {
			cfg.VotingCooldown = *upd.VotingCooldown
		}
		if upd.MinAccountAge != nil {
			cfg.MinAccountAge = *upd.MinAccountAge
		}
		if upd.DailyVoteLimit != nil {
			if *upd.DailyVoteLimit <= 0 {
				return reputation.ErrInvalidDailyLimit
			}
			cfg.DailyVoteLimit = *upd.DailyVoteLimit
		}
		if upd.MinReputationToVote != nil {
			cfg.MinReputationToVote = *upd.MinReputationToVote
		}
		if upd.CategoryWeights != nil {
			if err := reputation.ValidateCategoryWeights(*upd.CategoryWeights); err != nil {
				return err
			}
			cfg.CategoryWeights = *upd.CategoryWeights
		}
		if upd.RoleThresholds != nil {
			if err := reputation.ValidateRoleThresholds(upd.RoleThresholds); err != nil {
				return err
			}
			cfg.RoleThresholds = upd.RoleThresholds
		}
		if upd.DecayEnabled != nil {
			cfg.DecayEnabled = *upd.DecayEnabled
		}
		if upd.DecayRate != nil {
			cfg.DecayRate = *upd.DecayRate
		}
		tx.SetConfig(cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	s.log.Info(ctx, "config updated", logger.String("caller", string(caller)))
	return nil
}

// TransferAdmin hands the admin identity to newAdmin.
func (s *Service) TransferAdmin(ctx context.Context, newAdmin, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		cfg.Admin = newAdmin
		tx.SetConfig(cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("transfer admin: %w", err)
	}
	s.log.Info(ctx, "admin transferred",
		logger.String("from", string(caller)),
		logger.String("to", string(newAdmin)))
	return nil
}

// SetPaused pauses or resumes member-facing mutations. Admin config
// operations stay available while paused, so the system can be resumed.
func (s *Service) SetPaused(ctx context.Context, paused bool, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		cfg.Paused = paused
		tx.SetConfig(cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	s.log.Warn(ctx, "pause state changed", logger.Bool("paused", paused))
	return nil
}

// ScoreAdjustment is one entry of a manual score change.
type ScoreAdjustment struct {
	Member   reputation.MemberID
	Category reputation.Category
	Delta    int64
	Reason   string
}

// AdjustScore applies a manual score change to one member. Admin only; a
// delta that would drive the category negative is rejected.
func (s *Service) AdjustScore(ctx context.Context, adj ScoreAdjustment, caller reputation.MemberID) error {
	var newly []reputation.Achievement
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		newly, err = s.adjustOne(tx, adj, uuid.NewString(), caller)
		return err
	})
	if err != nil {
		return fmt.Errorf("adjust score: %w", err)
	}
	s.recordAchievements(ctx, adj.Member, newly)
	s.log.Info(ctx, "score adjusted",
		logger.String("member", string(adj.Member)),
		logger.String("category", adj.Category.String()),
		logger.Int64("delta", adj.Delta))
	return nil
}

// BulkAdjustScore applies up to MaxBulkSize adjustments atomically: if any
// entry fails, none are applied. Entries share one audit batch id.
func (s *Service) BulkAdjustScore(ctx context.Context, adjs []ScoreAdjustment, caller reputation.MemberID) error {
	if len(adjs) > MaxBulkSize {
		return fmt.Errorf("bulk adjust score: %w", reputation.ErrBulkTooLarge)
	}
	batchID := uuid.NewString()
	newlyByMember := make(map[reputation.MemberID][]reputation.Achievement)
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		for _, adj := range adjs {
			newly, err := s.adjustOne(tx, adj, batchID, caller)
			if err != nil {
				return err
			}
			newlyByMember[adj.Member] = append(newlyByMember[adj.Member], newly...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bulk adjust score: %w", err)
	}
	for member, newly := range newlyByMember {
		s.recordAchievements(ctx, member, newly)
	}
	s.log.Info(ctx, "bulk score adjustment applied",
		logger.String("batch", batchID),
		logger.Int("entries", len(adjs)))
	return nil
}

// adjustOne is the shared manual-adjustment path: validate, apply the delta,
// recompute the total, refresh activity, evaluate achievements, audit.
func (s *Service) adjustOne(tx *repository.Tx, adj ScoreAdjustment, auditID string, actor reputation.MemberID) ([]reputation.Achievement, error) {
	if len(adj.Reason) > MaxReasonLength {
		return nil, reputation.ErrStringTooLong
	}
	m, err := tx.Member(adj.Member)
	if err != nil {
		return nil, err
	}
	if err := m.ApplyDelta(adj.Category, adj.Delta); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	m.LastActivity = now
	newly := s.evaluateAchievements(&m)
	tx.SetMember(m)
	tx.AppendAudit(reputation.AuditEntry{
		ID:        auditID,
		Member:    adj.Member,
		Category:  adj.Category,
		Delta:     adj.Delta,
		Reason:    adj.Reason,
		Actor:     actor,
		AppliedAt: now,
	})
	return newly, nil
}

// AwardAchievement sets an achievement bit by admin fiat. Bits are never
// cleared; awarding a set bit fails.
func (s *Service) AwardAchievement(ctx context.Context, member reputation.MemberID, a reputation.Achievement, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if !a.Valid() {
			return reputation.ErrInvalidAchievement
		}
		m, err := tx.Member(member)
		if err != nil {
			return err
		}
		if m.Achievements.Has(a) {
			return reputation.ErrAchievementAwarded
		}
		m.Achievements = m.Achievements.With(a)
		m.LastActivity = s.clock.Now()
		tx.SetMember(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("award achievement: %w", err)
	}
	s.metrics.AchievementAwarded(a.String())
	s.log.Info(ctx, "achievement awarded",
		logger.String("member", string(member)),
		logger.String("achievement", a.String()))
	return nil
}

// ApplyDecay commits the previewed erosion for one member through the clamped
// score path and refreshes the activity timestamp.
func (s *Service) ApplyDecay(ctx context.Context, member reputation.MemberID, caller reputation.MemberID) error {
	now := s.clock.Now()
	var removed int64
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if !cfg.DecayEnabled {
			return reputation.ErrDecayDisabled
		}
		m, err := tx.Member(member)
		if err != nil {
			return err
		}
		preview := decay.Compute(m, cfg, now)
		if preview.ElapsedDays == 0 {
			return reputation.ErrNoActivityToDecay
		}
		for c := reputation.Category(0); c < reputation.NumCategories; c++ {
			removed -= m.ApplyDeltaClamped(c, -preview.Amounts[c])
		}
		m.LastActivity = now
		tx.SetMember(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply decay: %w", err)
	}
	s.metrics.DecayRemoved(removed)
	s.log.Info(ctx, "decay applied",
		logger.String("member", string(member)),
		logger.Int64("points_removed", removed))
	return nil
}

// ResetDecayTimer forgives accrued decay by refreshing the activity timestamp
// without touching any score.
func (s *Service) ResetDecayTimer(ctx context.Context, member reputation.MemberID, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		m, err := tx.Member(member)
		if err != nil {
			return err
		}
		m.LastActivity = s.clock.Now()
		tx.SetMember(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset decay timer: %w", err)
	}
	return nil
}

// StartSeason creates a new season record and makes it current.
func (s *Service) StartSeason(ctx context.Context, name string, durationDays int, id uint32, caller reputation.MemberID) error {
	now := s.clock.Now()
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if len(name) > MaxSeasonNameLength {
			return reputation.ErrStringTooLong
		}
		if durationDays <= 0 || durationDays > MaxSeasonDays {
			return reputation.ErrInvalidSeasonDuration
		}
		if _, exists := tx.Season(id); exists {
			return reputation.ErrSeasonExists
		}
		tx.SetSeason(reputation.Season{
			ID:           id,
			Name:         name,
			StartedAt:    now,
			DurationDays: durationDays,
		})
		cfg.CurrentSeason = id
		tx.SetConfig(cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("start season: %w", err)
	}
	s.metrics.SeasonStarted()
	s.log.Info(ctx, "season started",
		logger.Uint32("season", id),
		logger.String("name", name),
		logger.Int("duration_days", durationDays))
	return nil
}
