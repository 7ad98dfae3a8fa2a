package multiplex

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/store"
)

// Entry names one member store.
type Entry struct {
	Name  string
	Store store.Store
}

// Results maps member names to what their Dispatch returned.
type Results map[string]any

// Multiplexer broadcasts to an ordered set of named stores.
// It implements store.Observable.
type Multiplexer struct {
	names  []string
	stores map[string]store.Store
	logger *slog.Logger
}

type config struct {
	allowDuplicates bool
	assertions      bool
	logger          *slog.Logger
}

// Option configures a Multiplexer.
type Option func(*config)

// AllowDuplicates accepts repeated names. The name keeps the position of
// its first occurrence and the store of its last.
func AllowDuplicates() Option {
	return func(c *config) {
		c.allowDuplicates = true
	}
}

// WithAssertions toggles mapping validation. With validation disabled
// entries with empty names or nil stores are skipped.
func WithAssertions(enabled bool) Option {
	return func(c *config) {
		c.assertions = enabled
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Multiplexer over mapping. A nil mapping is rejected; an
// empty one yields a multiplexer with no members.
func New(mapping []Entry, opts ...Option) (*Multiplexer, error) {
	cfg := config{
		assertions: true,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if mapping == nil {
		if cfg.assertions {
			return nil, store.NewInvalidArgument("multiplex.New", "store mapping must exist")
		}
		mapping = []Entry{}
	}

	m := &Multiplexer{
		names:  make([]string, 0, len(mapping)),
		stores: make(map[string]store.Store, len(mapping)),
		logger: cfg.logger,
	}

	for i, e := range mapping {
		if e.Name == "" {
			if cfg.assertions {
				return nil, store.NewInvalidArgument("multiplex.New",
					fmt.Sprintf("entry %d: store name must not be empty", i))
			}
			continue
		}
		if err := store.Check("multiplex.New", e.Store); err != nil {
			if cfg.assertions {
				return nil, fmt.Errorf("entry %q: %w", e.Name, err)
			}
			continue
		}
		if _, seen := m.stores[e.Name]; seen {
			if !cfg.allowDuplicates {
				return nil, store.NewInvalidArgument("multiplex.New",
					fmt.Sprintf("duplicate store name %q", e.Name))
			}
		} else {
			m.names = append(m.names, e.Name)
		}
		m.stores[e.Name] = e.Store
	}

	return m, nil
}

// Dispatch sends action to every member in mapping order and collects
// each member's return value by name.
//
// The first member error stops the broadcast. Members already reached
// keep the action; the partial results are returned alongside the error.
func (m *Multiplexer) Dispatch(action store.Action) (any, error) {
	results := make(Results, len(m.names))
	for _, name := range m.names {
		ret, err := m.stores[name].Dispatch(action)
		if err != nil {
			m.logger.Debug("dispatch failed",
				"store", name,
				"action", action.Type,
				"error", err)
			return results, fmt.Errorf("dispatch %s to store %q: %w", action.Type, name, err)
		}
		results[name] = ret
	}

	m.logger.Debug("action broadcast",
		"action", action.Type,
		"stores", len(m.names))
	return results, nil
}

// GetState returns an object mapping each member name to its state.
// Members reporting absent state appear as null.
func (m *Multiplexer) GetState() ir.IRValue {
	state := make(ir.IRObject, len(m.names))
	for _, name := range m.names {
		s := m.stores[name].GetState()
		if s == nil {
			s = ir.IRNull{}
		}
		state[name] = s
	}
	return state
}

// Subscribe registers listener with every member that supports
// subscriptions. The returned Unsubscribe detaches it from all of them.
func (m *Multiplexer) Subscribe(listener store.Listener) store.Unsubscribe {
	unsubs := make([]store.Unsubscribe, 0, len(m.names))
	for _, name := range m.names {
		if sub, ok := m.stores[name].(store.Subscriber); ok {
			unsubs = append(unsubs, sub.Subscribe(listener))
		}
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		for _, u := range unsubs {
			u()
		}
	}
}

// SelectFirst returns the first of names that is a member, trying names
// in the order given.
func (m *Multiplexer) SelectFirst(names ...string) (store.Store, error) {
	for _, name := range names {
		if s, ok := m.stores[name]; ok {
			return s, nil
		}
	}
	return nil, store.NewLookupFailure("multiplex.SelectFirst",
		"none of the requested stores exist in store mapping",
		map[string]string{
			"configured": formatNames(m.names),
			"requested":  formatNames(names),
		})
}

// Select returns the members for names in the order given.
// Names that are not members are skipped.
func (m *Multiplexer) Select(names ...string) []store.Store {
	out := make([]store.Store, 0, len(names))
	for _, name := range names {
		if s, ok := m.stores[name]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Store returns the member registered under name.
func (m *Multiplexer) Store(name string) (store.Store, bool) {
	s, ok := m.stores[name]
	return s, ok
}

// Names returns member names in mapping order.
func (m *Multiplexer) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of members.
func (m *Multiplexer) Len() int {
	return len(m.names)
}

func formatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
