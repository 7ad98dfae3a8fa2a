package store

import (
	"fmt"
	"reflect"

	"github.com/roach88/storeplex/pkg/ir"
)

// Action is a message dispatched to a store.
type Action struct {
	// Type identifies the action. Reducers switch on it.
	Type string

	// Payload carries optional action data.
	Payload ir.IRValue
}

// Listener is notified after a store has processed an action.
type Listener func()

// Unsubscribe detaches a Listener. Calling it more than once is a no-op.
type Unsubscribe func()

// Store is the minimal store contract.
//
// Dispatch returns whatever the store chooses to return for an action
// (reducer stores return the action itself). Callers treat the value as
// opaque and pass it through.
type Store interface {
	Dispatch(action Action) (any, error)
	GetState() ir.IRValue
}

// Subscriber is implemented by stores that notify listeners after dispatch.
type Subscriber interface {
	Subscribe(listener Listener) Unsubscribe
}

// Observable is a Store that also supports subscriptions.
type Observable interface {
	Store
	Subscriber
}

// SubscribeTo subscribes listener to s when s supports subscriptions.
// For stores without Subscribe it returns a no-op Unsubscribe.
func SubscribeTo(s Store, listener Listener) Unsubscribe {
	if sub, ok := s.(Subscriber); ok {
		return sub.Subscribe(listener)
	}
	return func() {}
}

// Funcs adapts plain functions into a Store.
// SubscribeFunc is optional.
type Funcs struct {
	DispatchFunc  func(action Action) (any, error)
	GetStateFunc  func() ir.IRValue
	SubscribeFunc func(listener Listener) Unsubscribe
}

// Dispatch calls DispatchFunc.
func (f Funcs) Dispatch(action Action) (any, error) {
	if f.DispatchFunc == nil {
		return nil, NewInvalidArgument("store.Funcs.Dispatch", "store must define Dispatch")
	}
	return f.DispatchFunc(action)
}

// GetState calls GetStateFunc. A missing GetStateFunc yields absent state.
func (f Funcs) GetState() ir.IRValue {
	if f.GetStateFunc == nil {
		return nil
	}
	return f.GetStateFunc()
}

// Subscribe calls SubscribeFunc, or returns a no-op Unsubscribe when unset.
func (f Funcs) Subscribe(listener Listener) Unsubscribe {
	if f.SubscribeFunc == nil {
		return func() {}
	}
	return f.SubscribeFunc(listener)
}

// Check validates that s is usable as a store: it must exist, and a Funcs
// adapter must define both Dispatch and GetState. op is recorded on the
// returned error.
func Check(op string, s Store) error {
	if s == nil || isNilValue(s) {
		return NewInvalidArgument(op, "store must exist")
	}

	var f Funcs
	switch v := s.(type) {
	case Funcs:
		f = v
	case *Funcs:
		if v == nil {
			return NewInvalidArgument(op, "store must exist")
		}
		f = *v
	default:
		return nil
	}

	if f.DispatchFunc == nil {
		return NewInvalidArgument(op, "store must define Dispatch")
	}
	if f.GetStateFunc == nil {
		return NewInvalidArgument(op, "store must define GetState")
	}
	return nil
}

// String renders the action for logs and error messages.
func (a Action) String() string {
	if a.Payload == nil {
		return a.Type
	}
	payload, err := ir.MarshalCanonical(a.Payload)
	if err != nil {
		return fmt.Sprintf("%s <%v>", a.Type, err)
	}
	return fmt.Sprintf("%s %s", a.Type, payload)
}

// isNilValue reports whether s wraps a nil pointer, map, func, slice or
// channel.
func isNilValue(s Store) bool {
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
