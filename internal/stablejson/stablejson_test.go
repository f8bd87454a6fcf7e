package stablejson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeysAtEveryDepth(t *testing.T) {
	t.Parallel()

	v := map[string]any{
		"zebra": 1,
		"apple": map[string]any{
			"delta": []any{map[string]any{"b": 2, "a": 1}},
			"alpha": "x",
		},
	}
	out, err := MarshalString(v)
	require.NoError(t, err)
	assert.Equal(t, `{"apple":{"alpha":"x","delta":[{"a":1,"b":2}]},"zebra":1}`, out)
}

func TestMarshalIsInsertionOrderInvariant(t *testing.T) {
	t.Parallel()

	a := map[string]any{"planName": "Base", "durationWeeks": 4, "days": []any{}}
	b := map[string]any{"days": []any{}, "durationWeeks": 4, "planName": "Base"}

	sa, err := MarshalString(a)
	require.NoError(t, err)
	sb, err := MarshalString(b)
	require.NoError(t, err)
	assert.Equal(t, sa, sb, "equal maps must serialize to equal bytes")
}

func TestMarshalPreservesNumberPrecision(t *testing.T) {
	t.Parallel()

	out, err := MarshalString(map[string]any{"cost": 0.00042, "tokens": 128})
	require.NoError(t, err)
	assert.Equal(t, `{"cost":0.00042,"tokens":128}`, out)
}

func TestMarshalStructsUseJSONTags(t *testing.T) {
	t.Parallel()

	type inner struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	out, err := MarshalString(inner{B: "2", A: "1"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, out)
}

func TestMarshalNullAndArrays(t *testing.T) {
	t.Parallel()

	out, err := MarshalString(map[string]any{"x": nil, "arr": []any{3, 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"arr":[3,1,2],"x":null}`, out, "array order must be preserved, not sorted")
}
