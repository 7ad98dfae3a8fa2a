package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storeplex/pkg/ir"
)

func TestSelector_Select(t *testing.T) {
	sel := New(ir.F("user"), ir.F("name"))

	got, err := sel.Select(ir.IRObject{"user": ir.IRObject{"name": ir.IRString("Ann")}})
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("Ann"), got)

	got, err = sel.Select(ir.IRObject{"user": ir.IRObject{}}, WithDefault(ir.IRString("?")))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("?"), got)
}

func TestSelector_CapturesKeys(t *testing.T) {
	keys := []ir.Key{ir.F("a")}
	sel := New(keys...)
	keys[0] = ir.F("b")

	assert.Equal(t, ir.Keys("a"), sel.Path())

	p := sel.Path()
	p[0] = ir.F("c")
	assert.Equal(t, ir.Keys("a"), sel.Path())
}

func TestSelector_WithOptions(t *testing.T) {
	base := New(ir.F("count"))
	strict := base.WithOptions(WithPolicy(Absent), WithDefault(ir.IRInt(-1)))
	state := ir.IRObject{"count": ir.IRInt(0)}

	got, err := base.Select(state)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = strict.Select(state)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(0), got)

	// Per-call options override captured ones.
	got, err = strict.Select(state, WithPolicy(Falsy))
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(-1), got)
}

func TestNewStateBisector(t *testing.T) {
	state := ir.IRObject{
		"entities": ir.IRObject{
			"users": ir.IRObject{
				"u1": ir.IRObject{"name": ir.IRString("Ann")},
				"u2": ir.IRObject{"name": ir.IRString("Bob")},
			},
		},
	}

	byID := NewStateBisector(ir.F("entities"), ir.F("users"))

	u1 := byID(ir.F("u1"))
	assert.Equal(t, ir.Keys("entities", "users", "u1"), u1.Path())

	got, err := u1.Select(state)
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"name": ir.IRString("Ann")}, got)

	got, err = byID(ir.F("u2")).Select(state)
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"name": ir.IRString("Bob")}, got)

	got, err = byID(ir.F("u3")).Select(state, WithDefault(ir.IRObject{}))
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{}, got)
}

func TestNewStateBisector_NoPrefix(t *testing.T) {
	byIndex := NewStateBisector()
	got, err := byIndex(ir.I(1)).Select(ir.IRArray{ir.IRString("a"), ir.IRString("b")})
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("b"), got)
}
