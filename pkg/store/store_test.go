package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storeplex/pkg/ir"
)

func TestFuncs_Delegates(t *testing.T) {
	var got Action
	f := Funcs{
		DispatchFunc: func(a Action) (any, error) {
			got = a
			return "ok", nil
		},
		GetStateFunc: func() ir.IRValue { return ir.IRString("state") },
	}

	ret, err := f.Dispatch(Action{Type: "PING"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ret)
	assert.Equal(t, "PING", got.Type)
	assert.Equal(t, ir.IRString("state"), f.GetState())

	// No SubscribeFunc: no-op unsubscribe.
	unsub := f.Subscribe(func() {})
	assert.NotPanics(t, func() { unsub() })
}

func TestFuncs_MissingDispatch(t *testing.T) {
	_, err := Funcs{}.Dispatch(Action{Type: "X"})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Nil(t, Funcs{}.GetState())
}

func TestSubscribeTo(t *testing.T) {
	subscribed := false
	withSub := Funcs{
		SubscribeFunc: func(Listener) Unsubscribe {
			subscribed = true
			return func() {}
		},
	}
	SubscribeTo(withSub, func() {})
	assert.True(t, subscribed)

	plain := struct{ Store }{Funcs{}}
	unsub := SubscribeTo(plain, func() {})
	assert.NotNil(t, unsub)
	assert.NotPanics(t, func() { unsub() })
}

func TestCheck(t *testing.T) {
	full := Funcs{
		DispatchFunc: func(Action) (any, error) { return nil, nil },
		GetStateFunc: func() ir.IRValue { return nil },
	}

	tests := []struct {
		name    string
		store   Store
		wantErr string
	}{
		{name: "nil", store: nil, wantErr: "store must exist"},
		{name: "nil funcs pointer", store: (*Funcs)(nil), wantErr: "store must exist"},
		{name: "typed nil basic", store: (*Basic)(nil), wantErr: "store must exist"},
		{name: "no dispatch", store: Funcs{GetStateFunc: full.GetStateFunc}, wantErr: "must define Dispatch"},
		{name: "no getstate", store: Funcs{DispatchFunc: full.DispatchFunc}, wantErr: "must define GetState"},
		{name: "complete funcs", store: full},
		{name: "complete funcs pointer", store: &full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check("test", tt.store)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "op=test")
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "PING", Action{Type: "PING"}.String())
	assert.Equal(t, `SET {"a":1}`, Action{Type: "SET", Payload: ir.IRObject{"a": ir.IRInt(1)}}.String())
}
