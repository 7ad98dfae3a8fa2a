package store

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/storeplex/pkg/ir"
)

// ActionInit is dispatched by New so reducers can populate initial state.
const ActionInit = "@@storeplex/INIT"

// Reducer computes the next state from the current state and an action.
// Reducers must not mutate state and must not dispatch.
type Reducer func(state ir.IRValue, action Action) (ir.IRValue, error)

// Basic is a reducer-backed store. Dispatch returns the dispatched action.
//
// Basic is not safe for concurrent use.
type Basic struct {
	name    string
	reducer Reducer
	state   ir.IRValue
	logger  *slog.Logger

	listeners   []subscription
	nextID      uint64
	dispatching bool
}

type subscription struct {
	id       uint64
	listener Listener
}

// Option configures a Basic store.
type Option func(*Basic)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Basic) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithName labels the store in log output.
func WithName(name string) Option {
	return func(b *Basic) {
		b.name = name
	}
}

// New creates a Basic store and dispatches ActionInit through reducer.
func New(reducer Reducer, initial ir.IRValue, opts ...Option) (*Basic, error) {
	if reducer == nil {
		return nil, NewInvalidArgument("store.New", "reducer must exist")
	}

	b := &Basic{
		reducer: reducer,
		state:   initial,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	if _, err := b.Dispatch(Action{Type: ActionInit}); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return b, nil
}

// Dispatch runs the reducer and notifies listeners.
// On reducer error the state is left unchanged and no listener runs.
func (b *Basic) Dispatch(action Action) (any, error) {
	if action.Type == "" {
		return nil, NewInvalidArgument("store.Dispatch", "actions must have a Type")
	}
	if b.dispatching {
		return nil, ErrReentrantDispatch
	}

	next, err := b.reduce(action)
	if err != nil {
		b.logger.Debug("reducer failed",
			"store", b.name,
			"action", action.Type,
			"error", err)
		return nil, fmt.Errorf("reduce %s: %w", action.Type, err)
	}
	b.state = next

	b.logger.Debug("action dispatched",
		"store", b.name,
		"action", action.Type,
		"listeners", len(b.listeners))

	// Listeners added or removed during notification take effect next dispatch.
	snapshot := make([]subscription, len(b.listeners))
	copy(snapshot, b.listeners)
	for _, s := range snapshot {
		s.listener()
	}

	return action, nil
}

func (b *Basic) reduce(action Action) (ir.IRValue, error) {
	b.dispatching = true
	defer func() { b.dispatching = false }()
	return b.reducer(b.state, action)
}

// GetState returns the current state.
func (b *Basic) GetState() ir.IRValue {
	return b.state
}

// Subscribe registers listener to run after every dispatch.
// It panics if listener is nil.
func (b *Basic) Subscribe(listener Listener) Unsubscribe {
	if listener == nil {
		panic("store: nil listener")
	}

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, listener: listener})

	return func() {
		for i, s := range b.listeners {
			if s.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}
