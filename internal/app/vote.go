package app

import (
	"context"
	"fmt"
	"time"

	"github.com/repboard/repboard/internal/adapters/repository"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/pkg/logger"
)

const secondsPerDay = 86400

// Vote describes one peer vote.
type Vote struct {
	Voter    reputation.MemberID
	Target   reputation.MemberID
	Upvote   bool
	Category reputation.Category
	Weight   int
}

// CastVote validates and applies a peer vote. An upvote adds the weight to
// the target's category; a downvote removes half the weight rounded up,
// clamped at zero. The daily limit is tracked per (voter, target) pair: the
// pairwise record owns the counter, so the cap bounds repeat votes on one
// target rather than a voter's global output.
func (s *Service) CastVote(ctx context.Context, v Vote) error {
	now := s.clock.Now()
	var voterNew, targetNew []reputation.Achievement
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := requireConfig(tx)
		if err != nil {
			return err
		}
		if err := requireRunning(cfg); err != nil {
			return err
		}
		if v.Voter == v.Target {
			return reputation.ErrCannotVoteOnSelf
		}
		if err := reputation.ValidateVoteWeight(v.Weight); err != nil {
			return err
		}
		if !v.Category.Valid() {
			return reputation.ErrInvalidCategory
		}

		voter, err := tx.Member(v.Voter)
		if err != nil {
			return err
		}
		if voter.TotalScore < cfg.MinReputationToVote {
			return reputation.ErrInsufficientRep
		}
		if now.Unix()-voter.CreatedAt.Unix() < cfg.MinAccountAge {
			return reputation.ErrAccountTooNew
		}

		record, exists := tx.VotingRecord(v.Voter, v.Target)
		if !exists {
			record = reputation.VotingRecord{
				Voter:            v.Voter,
				Target:           v.Target,
				DailyWindowStart: now,
			}
		}
		if exists && now.Unix()-record.LastVoteAt.Unix() < cfg.VotingCooldown {
			return reputation.ErrCooldownNotExpired
		}
		if dayOf(now) != dayOf(record.DailyWindowStart) {
			record.DailyVotes = 0
			record.DailyWindowStart = now
		}
		if record.DailyVotes >= cfg.DailyVoteLimit {
			return reputation.ErrDailyLimitExceeded
		}

		target, err := tx.Member(v.Target)
		if err != nil {
			return err
		}
		if v.Upvote {
			if err := target.ApplyDelta(v.Category, reputation.UpvotePoints(v.Weight)); err != nil {
				return err
			}
		} else {
			target.ApplyDeltaClamped(v.Category, -reputation.DownvotePoints(v.Weight))
		}
		target.LastActivity = now
		targetNew = s.evaluateAchievements(&target)
		tx.SetMember(target)

		record.LastVoteAt = now
		record.DailyVotes++
		record.TotalVotesOnTarget++
		tx.SetVotingRecord(record)

		voter.VotesCast++
		voter.LastActivity = now
		voterNew = s.evaluateAchievements(&voter)
		tx.SetMember(voter)
		return nil
	})
	if err != nil {
		s.metrics.VoteRejected(rejectReason(err))
		return fmt.Errorf("cast vote: %w", err)
	}

	direction := "up"
	if !v.Upvote {
		direction = "down"
	}
	s.metrics.VoteAccepted(direction)
	s.recordAchievements(ctx, v.Voter, voterNew)
	s.recordAchievements(ctx, v.Target, targetNew)
	s.log.Info(ctx, "vote cast",
		logger.String("voter", string(v.Voter)),
		logger.String("target", string(v.Target)),
		logger.String("category", v.Category.String()),
		logger.String("direction", direction),
		logger.Int("weight", v.Weight))
	return nil
}

// dayOf is the UTC calendar day number; the daily window resets when it
// changes.
func dayOf(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}
