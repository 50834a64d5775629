package settings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type wrapped struct {
	Size  int    `json:"size"`
	Label string `json:"label,omitempty"`
	Skip  string `json:"-"`
}

type withFunc struct {
	A       int          `json:"a"`
	OnApply func() error `json:"onApply"`
}

func TestEqual_NormalizesIncidentalDifferences(t *testing.T) {
	tests := []struct {
		name   string
		local  interface{}
		remote interface{}
		equal  bool
	}{
		{
			name:   "KeyOrder_ShouldBeEqual",
			local:  map[string]interface{}{"a": 1, "b": 2},
			remote: map[string]interface{}{"b": 2, "a": 1},
			equal:  true,
		},
		{
			name:   "IntVersusFloat_ShouldBeEqual",
			local:  4,
			remote: float64(4),
			equal:  true,
		},
		{
			name:   "TypedSliceVersusGeneric_ShouldBeEqual",
			local:  []string{"pylint", "flake8"},
			remote: []interface{}{"pylint", "flake8"},
			equal:  true,
		},
		{
			name:   "StructVersusMap_ShouldBeEqual",
			local:  wrapped{Size: 2, Skip: "ignored"},
			remote: map[string]interface{}{"size": 2},
			equal:  true,
		},
		{
			name:   "FuncMemberDropped_ShouldBeEqual",
			local:  map[string]interface{}{"a": 1, "cb": func() {}},
			remote: map[string]interface{}{"a": 1},
			equal:  true,
		},
		{
			name:   "FuncStructFieldDropped_ShouldBeEqual",
			local:  withFunc{A: 1, OnApply: func() error { return nil }},
			remote: map[string]interface{}{"a": 1},
			equal:  true,
		},
		{
			name:   "DifferentValue_ShouldDiffer",
			local:  2,
			remote: 4,
			equal:  false,
		},
		{
			name:   "NestedDifference_ShouldDiffer",
			local:  map[string]interface{}{"a": []interface{}{1, 2}},
			remote: map[string]interface{}{"a": []interface{}{2, 1}},
			equal:  false,
		},
		{
			name:   "NilVersusFalse_ShouldDiffer",
			local:  nil,
			remote: false,
			equal:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.local, tt.remote))
		})
	}
}

func TestNormalize_NonRepresentableValues(t *testing.T) {
	assert.Nil(t, Normalize(func() {}))
	assert.Nil(t, Normalize(math.NaN()))
	assert.Equal(t, []interface{}{nil, float64(1)}, Normalize([]interface{}{func() {}, 1}))
	assert.Equal(t, map[string]interface{}{"ok": true}, Normalize(map[string]interface{}{"ok": true, "ch": make(chan int)}))

	assert.True(t, Equal(func() {}, nil))
	assert.True(t, Equal(make(chan int), nil))
	assert.False(t, Equal(func() {}, false))
}

// Property-based tests using rapid

func jsonValue() *rapid.Generator[interface{}] {
	scalar := rapid.OneOf(
		rapid.Map(rapid.Bool(), func(b bool) interface{} { return b }),
		rapid.Map(rapid.IntRange(-1000, 1000), func(i int) interface{} { return i }),
		rapid.Map(rapid.StringMatching(`[a-z]{0,8}`), func(s string) interface{} { return s }),
	)
	return rapid.OneOf(
		scalar,
		rapid.Map(rapid.SliceOfN(scalar, 0, 4), func(s []interface{}) interface{} { return s }),
		rapid.Map(rapid.MapOfN(rapid.StringMatching(`[a-z]{1,4}`), scalar, 0, 4), func(m map[string]interface{}) interface{} { return m }),
	)
}

// TestEqual_PropertyBased_Reflexive tests that every JSON value equals itself and its normalized form
func TestEqual_PropertyBased_Reflexive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := jsonValue().Draw(t, "value")

		assert.True(t, Equal(v, v), "value should equal itself: %#v", v)
		assert.True(t, Equal(v, Normalize(v)), "value should equal its normalized form: %#v", v)
	})
}

// TestNormalize_PropertyBased_Idempotent tests that normalizing twice changes nothing
func TestNormalize_PropertyBased_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := jsonValue().Draw(t, "value")
		once := Normalize(v)
		assert.Equal(t, once, Normalize(once))
	})
}
