// Package config defines service configuration structures and loading hooks.
//
// Conventions follow the rest of the codebase: defaults come from New,
// layered with an optional YAML file and environment variables in Load, and
// external errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SystemID is the identifier embedded in exported certificates.
	SystemID string `koanf:"system_id"`

	// MaxPageSize caps leaderboard page sizes.
	MaxPageSize int `koanf:"max_page_size"`

	// Bootstrap seeds the ledger config record on first start.
	Bootstrap Bootstrap `koanf:"bootstrap"`
}

// Bootstrap holds the ledger tunables applied when the process starts against
// an empty store. Ignored unless Enabled is set.
type Bootstrap struct {
	Enabled             bool    `koanf:"enabled"`
	Admin               string  `koanf:"admin"`
	VotingCooldown      int64   `koanf:"voting_cooldown"`
	MinAccountAge       int64   `koanf:"min_account_age"`
	DailyVoteLimit      int     `koanf:"daily_vote_limit"`
	MinReputationToVote int64   `koanf:"min_reputation_to_vote"`
	CategoryWeights     []int64 `koanf:"category_weights"`
	RoleThresholds      []int64 `koanf:"role_thresholds"`
	DecayRate           int64   `koanf:"decay_rate"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		SystemID:    "repboard",
		MaxPageSize: 100,
		Bootstrap: Bootstrap{
			Enabled:             false,
			VotingCooldown:      600,
			MinAccountAge:       86400,
			DailyVoteLimit:      10,
			MinReputationToVote: 100,
			CategoryWeights:     []int64{2500, 2500, 2500, 2500},
			RoleThresholds:      []int64{100, 500, 1000, 2500, 5000},
			DecayRate:           10,
		},
	}
}
