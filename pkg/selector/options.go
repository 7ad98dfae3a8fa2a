package selector

import "github.com/roach88/storeplex/pkg/ir"

// Policy decides which looked-up values count as missing.
type Policy int

const (
	// Falsy treats absent values, null, false, 0, "" and empty
	// collections as missing.
	Falsy Policy = iota

	// Absent treats only absent values and null as missing.
	Absent
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Falsy:
		return "falsy"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Missing reports whether v is missing under p.
func (p Policy) Missing(v ir.IRValue) bool {
	if p == Absent {
		return ir.IsAbsent(v)
	}
	return ir.IsZero(v)
}

// Option configures a selection.
type Option func(*Settings)

// Settings is the resolved form of a set of Options.
type Settings struct {
	Default    ir.IRValue
	HasDefault bool
	Policy     Policy
	Required   bool
	Assertions bool
}

// Apply resolves opts on top of the defaults: Falsy policy, no default,
// assertions enabled.
func Apply(opts ...Option) Settings {
	s := Settings{Policy: Falsy, Assertions: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDefault returns v when the selected value is missing.
func WithDefault(v ir.IRValue) Option {
	return func(s *Settings) {
		s.Default = v
		s.HasDefault = true
	}
}

// WithPolicy sets the missing-value policy.
func WithPolicy(p Policy) Option {
	return func(s *Settings) {
		s.Policy = p
	}
}

// Required makes a missing key an error unless a default is given.
func Required() Option {
	return func(s *Settings) {
		s.Required = true
	}
}

// WithAssertions toggles argument validation. With validation disabled an
// empty path selects the state itself and absent state selects the default.
func WithAssertions(enabled bool) Option {
	return func(s *Settings) {
		s.Assertions = enabled
	}
}

func (s Settings) fallback() ir.IRValue {
	if s.HasDefault {
		return s.Default
	}
	return nil
}
