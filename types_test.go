package assetpipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroups(t *testing.T) {
	t.Parallel()

	plan := []Ref{
		{Container: "a", Name: "1"},
		{Container: "a", Name: "2"},
		{Container: "b", Name: "3"},
		{Container: "a", Name: "4"},
	}
	groups := Groups(plan)
	assert.Len(t, groups, 3)
	assert.Equal(t, plan[:2], groups[0])
	assert.Equal(t, plan[2:3], groups[1])
	assert.Equal(t, plan[3:], groups[2])
	assert.Empty(t, Groups(nil))
}

func TestSkipSuffixes(t *testing.T) {
	t.Parallel()

	skip := SkipSuffixes("_SteamPreview", "_Snapshot")
	assert.True(t, skip(Ref{Name: "level_SteamPreview"}))
	assert.True(t, skip(Ref{Name: "level_Snapshot"}))
	assert.False(t, skip(Ref{Name: "level_Snapshot_mesh"}))
	assert.False(t, SkipSuffixes()(Ref{Name: "x"}))
}
