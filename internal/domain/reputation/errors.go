package reputation

import "errors"

// Sentinel kinds for ledger errors. Callers match with errors.Is.
var (
	// Validation: malformed input, rejected before any record is touched.
	ErrInvalidVoteWeight     = errors.New("vote weight out of range")
	ErrInvalidCategory       = errors.New("invalid reputation category")
	ErrInvalidAchievement    = errors.New("invalid achievement")
	ErrInvalidCategoryWeight = errors.New("category weights must sum to 10000 basis points")
	ErrInvalidRoleThresholds = errors.New("role thresholds must be strictly increasing")
	ErrInvalidRoleLevel      = errors.New("invalid role level")
	ErrStringTooLong         = errors.New("string exceeds maximum length")
	ErrInvalidPagination     = errors.New("invalid pagination parameters")
	ErrBulkTooLarge          = errors.New("bulk operation exceeds maximum size")
	ErrInvalidSeasonDuration = errors.New("season duration out of range")
	ErrInvalidDailyLimit     = errors.New("daily vote limit must be positive")

	// Authorization: wrong caller, no state change.
	ErrUnauthorizedAdmin = errors.New("caller is not the admin")
	ErrUnauthorized      = errors.New("caller does not own this record")

	// Eligibility/state: rejected until the underlying condition changes.
	ErrAlreadyInitialized  = errors.New("already initialized")
	ErrNotInitialized      = errors.New("reputation system not initialized")
	ErrMemberNotFound      = errors.New("member not found")
	ErrSeasonNotFound      = errors.New("season not found")
	ErrSeasonExists        = errors.New("season already exists")
	ErrCannotVoteOnSelf    = errors.New("cannot vote on self")
	ErrInsufficientRep     = errors.New("insufficient reputation to vote")
	ErrAccountTooNew       = errors.New("account too new to vote")
	ErrCooldownNotExpired  = errors.New("voting cooldown not expired")
	ErrDailyLimitExceeded  = errors.New("daily vote limit exceeded")
	ErrRoleNotUnlockable   = errors.New("role unlock requirements not met")
	ErrAchievementAwarded  = errors.New("achievement already awarded")
	ErrNegativeReputation  = errors.New("change would drive reputation negative")
	ErrDecayDisabled       = errors.New("reputation decay is disabled")
	ErrNoActivityToDecay   = errors.New("no inactivity to decay")
	ErrSystemPaused        = errors.New("system is paused")
)
