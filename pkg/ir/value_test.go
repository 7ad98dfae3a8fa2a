package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysUppercaseFirst(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65 sorts before 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestNewIRObjectFromPairs(t *testing.T) {
	obj := NewIRObjectFromPairs(O("name", IRString("cart")), O("count", IRInt(5)))

	assert.Equal(t, IRObject{"name": IRString("cart"), "count": IRInt(5)}, obj)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil null", nil, IRNull{}, false},
		{"null null", IRNull{}, IRNull{}, true},
		{"same string", IRString("a"), IRString("a"), true},
		{"string vs int", IRString("1"), IRInt(1), false},
		{"ints", IRInt(3), IRInt(3), true},
		{"bools differ", IRBool(true), IRBool(false), false},
		{"arrays", IRArray{IRInt(1), IRString("x")}, IRArray{IRInt(1), IRString("x")}, true},
		{"array length", IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(2)}, false},
		{"objects", IRObject{"a": IRObject{"b": IRInt(1)}}, IRObject{"a": IRObject{"b": IRInt(1)}}, true},
		{"object missing key", IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}, false},
		{"empty array vs empty object", IRArray{}, IRObject{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"user":{"name":"Ann","tags":["a","b"],"age":41,"admin":false,"nick":null}}`))
	require.NoError(t, err)

	expected := IRObject{
		"user": IRObject{
			"name":  IRString("Ann"),
			"tags":  IRArray{IRString("a"), IRString("b")},
			"age":   IRInt(41),
			"admin": IRBool(false),
			"nick":  IRNull{},
		},
	}
	assert.True(t, Equal(expected, v))
}

func TestUnmarshalIRValueRejectsFloats(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{"price":1.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestIRObjectJSONRoundTrip(t *testing.T) {
	obj := IRObject{
		"b": IRArray{IRInt(1), IRBool(true), IRNull{}},
		"a": IRString("<tag>"),
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	// Keys come out sorted; the standard encoder escapes HTML
	assert.Equal(t, `{"a":"\u003ctag\u003e","b":[1,true,null]}`, string(data))

	canonical, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<tag>","b":[1,true,null]}`, string(canonical))

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(obj, back))
}

func TestMarshalIRValueNilIsNull(t *testing.T) {
	data, err := MarshalIRValue(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
