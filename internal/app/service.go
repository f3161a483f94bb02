// Package app provides the reputation service that implements the ledger's
// operations on top of the record store.
package app

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/repboard/repboard/internal/adapters/repository"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/pkg/logger"
	"github.com/repboard/repboard/pkg/metrics"
)

// Input length and batch bounds.
const (
	MaxReasonLength     = 200
	MaxSeasonNameLength = 50
	MaxBulkSize         = 100
	MaxSeasonDays       = 365

	defaultMaxPageSize = 100
	defaultSystemID    = "repboard"
)

// Service implements the reputation ledger operations. Every mutating
// operation runs in one store transaction: it either commits entirely or
// leaves all records untouched. Callers are authenticated upstream; the
// current time comes from the injected clock, never from time.Now.
type Service struct {
	store       *repository.Store
	clock       clockwork.Clock
	log         logger.Logger
	metrics     *metrics.Manager
	systemID    string
	maxPageSize int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock sets the time source. Tests inject a fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStore sets a custom record store.
func WithStore(store *repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSystemID sets the identifier embedded in exported certificates.
func WithSystemID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.systemID = id
		}
	}
}

// WithMaxPageSize caps leaderboard page sizes.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:       repository.New(),
		clock:       clockwork.NewRealClock(),
		log:         logger.Nop(),
		systemID:    defaultSystemID,
		maxPageSize: defaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// requireConfig loads the config record or reports the system uninitialized.
func requireConfig(tx *repository.Tx) (reputation.Config, error) {
	cfg, ok := tx.Config()
	if !ok {
		return reputation.Config{}, reputation.ErrNotInitialized
	}
	return cfg, nil
}

// requireAdmin checks that caller is the stored admin.
func requireAdmin(cfg reputation.Config, caller reputation.MemberID) error {
	if caller != cfg.Admin {
		return reputation.ErrUnauthorizedAdmin
	}
	return nil
}

// requireRunning rejects member-facing mutations while the system is paused.
func requireRunning(cfg reputation.Config) error {
	if cfg.Paused {
		return reputation.ErrSystemPaused
	}
	return nil
}

// evaluateAchievements sets any automatically earnable bits the member now
// qualifies for and returns the newly set ones. Bits are only ever added.
func (s *Service) evaluateAchievements(m *reputation.Member) []reputation.Achievement {
	var newly []reputation.Achievement
	for _, a := range reputation.AllAchievements() {
		if m.Achievements.Has(a) || !m.QualifiesFor(a) {
			continue
		}
		m.Achievements = m.Achievements.With(a)
		newly = append(newly, a)
	}
	return newly
}

func (s *Service) recordAchievements(ctx context.Context, member reputation.MemberID, newly []reputation.Achievement) {
	for _, a := range newly {
		s.metrics.AchievementAwarded(a.String())
		s.log.Info(ctx, "achievement unlocked",
			logger.String("member", string(member)),
			logger.String("achievement", a.String()))
	}
}

// rejectReason maps a vote rejection to a stable metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, reputation.ErrCannotVoteOnSelf):
		return "self_vote"
	case errors.Is(err, reputation.ErrInvalidVoteWeight):
		return "invalid_weight"
	case errors.Is(err, reputation.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, reputation.ErrInsufficientRep):
		return "insufficient_reputation"
	case errors.Is(err, reputation.ErrAccountTooNew):
		return "account_too_new"
	case errors.Is(err, reputation.ErrCooldownNotExpired):
		return "cooldown"
	case errors.Is(err, reputation.ErrDailyLimitExceeded):
		return "daily_limit"
	case errors.Is(err, reputation.ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, reputation.ErrSystemPaused):
		return "paused"
	case errors.Is(err, reputation.ErrNotInitialized):
		return "not_initialized"
	default:
		return "other"
	}
}
