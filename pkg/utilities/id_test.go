package utilities

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_UniqueAndOrdered(t *testing.T) {
	g, err := NewIDGenerator(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	var prev int64
	for i := 0; i < 1000; i++ {
		id := g.Next()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
		assert.Greater(t, id, prev)
		assert.Less(t, id, int64(1)<<53)
		prev = id
	}
}

func TestNewIDGenerator_RejectsOutOfRangeNode(t *testing.T) {
	_, err := NewIDGenerator(16)
	assert.Error(t, err)
}

func TestNewIDGeneratorFromEnv_FallsBackToDefaultNode(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "not-a-number")
	g, err := NewIDGeneratorFromEnv()
	require.NoError(t, err)
	assert.Positive(t, g.Next())
}

func TestNewKSUID_Parses(t *testing.T) {
	s := NewKSUID()
	_, err := ksuid.Parse(s)
	assert.NoError(t, err)
}
