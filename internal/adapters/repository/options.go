package repository

// Default capacity hints for the record maps.
const (
	defaultMemberCapacity = 1024
	defaultVoteCapacity   = 4096
)

type options struct {
	memberCapacity int
	voteCapacity   int
}

func defaultOptions() options {
	return options{
		memberCapacity: defaultMemberCapacity,
		voteCapacity:   defaultVoteCapacity,
	}
}

// Option applies a configuration option to the Store.
type Option func(*options)

// WithMemberCapacity sets the initial capacity hint for the member map.
func WithMemberCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.memberCapacity = n
		}
	}
}

// WithVoteCapacity sets the initial capacity hint for the voting-record map.
func WithVoteCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.voteCapacity = n
		}
	}
}
