package app

import (
	"context"
	"fmt"

	"github.com/repboard/repboard/internal/adapters/repository"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/internal/domain/streak"
	"github.com/repboard/repboard/pkg/logger"
)

// RegisterMember creates the caller's zeroed reputation record. A member can
// register at most once; records are never deleted.
func (s *Service) RegisterMember(ctx context.Context, caller reputation.MemberID) error {
	now := s.clock.Now()
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if tx.HasMember(caller) {
			return reputation.ErrAlreadyInitialized
		}
		tx.SetMember(reputation.Member{
			ID:           caller,
			LastActivity: now,
			CreatedAt:    now,
		})
		cfg.TotalMembers++
		tx.SetConfig(cfg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("register member: %w", err)
	}
	s.metrics.MemberRegistered()
	s.log.Info(ctx, "member registered", logger.String("member", string(caller)))
	return nil
}

// ClaimRoleUnlock advances the caller's role level by one. Roles never
// advance automatically and never move backward; each level must be claimed
// in order once the score threshold is reached.
func (s *Service) ClaimRoleUnlock(ctx context.Context, member reputation.MemberID, level int, caller reputation.MemberID) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if caller != member {
			return reputation.ErrUnauthorized
		}
		if level < 1 || level > len(cfg.RoleThresholds) {
			return reputation.ErrInvalidRoleLevel
		}
		m, err := tx.Member(member)
		if err != nil {
			return err
		}
		if level != m.RoleLevel+1 || m.TotalScore < cfg.RoleThresholds[level-1] {
			return reputation.ErrRoleNotUnlockable
		}
		m.RoleLevel = level
		m.LastActivity = s.clock.Now()
		tx.SetMember(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("claim role unlock: %w", err)
	}
	s.metrics.RoleClaimed()
	s.log.Info(ctx, "role claimed",
		logger.String("member", string(member)),
		logger.Int("level", level))
	return nil
}

// TouchStreak records member activity for streak purposes. Consecutive-day
// activity extends the streak and credits the streak bonus to governance; a
// gap restarts the streak.
func (s *Service) TouchStreak(ctx context.Context, caller reputation.MemberID) (streak.Result, error) {
	now := s.clock.Now()
	var result streak.Result
	var newly []reputation.Achievement
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		m, err := tx.Member(caller)
		if err != nil {
			return err
		}
		result = streak.Touch(&m, now)
		if result.BonusPoints > 0 {
			if err := m.ApplyDelta(reputation.Governance, result.BonusPoints); err != nil {
				return err
			}
		}
		m.LastActivity = now
		newly = s.evaluateAchievements(&m)
		tx.SetMember(m)
		return nil
	})
	if err != nil {
		return streak.Result{}, fmt.Errorf("touch streak: %w", err)
	}
	s.recordAchievements(ctx, caller, newly)
	if result.Extended || result.Broken {
		s.log.Debug(ctx, "streak updated",
			logger.String("member", string(caller)),
			logger.Int("current", result.CurrentStreak),
			logger.Bool("broken", result.Broken))
	}
	return result, nil
}
