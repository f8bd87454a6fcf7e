package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPayloadDeterministic(t *testing.T) {
	t.Parallel()

	a := map[string]any{"alias": "Golden Hawk", "age": 35, "goals": []any{"strength"}}
	b := map[string]any{"goals": []any{"strength"}, "age": 35, "alias": "Golden Hawk"}

	ha, err := HashPayload(a)
	require.NoError(t, err)
	hb, err := HashPayload(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "key order must not change the hash")
	assert.Len(t, ha, 64)
}

func TestHashPayloadDistinguishesContent(t *testing.T) {
	t.Parallel()

	ha, err := HashPayload(map[string]any{"alias": "Golden Hawk"})
	require.NoError(t, err)
	hb, err := HashPayload(map[string]any{"alias": "Silver Fox"})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}
