package dialogue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func openTestHistory(t *testing.T) (*History, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialogue.json")
	h, err := OpenHistory(path)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	h.now = clock.now
	return h, path
}

func TestOpenHistory(t *testing.T) {
	h, path := openTestHistory(t)
	assert.Empty(t, h.Mapped())
	assert.Empty(t, h.Interactions())
	assert.Equal(t, path, h.Path())

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("[1"), 0o644))
	_, err = OpenHistory(broken)
	assert.Error(t, err)
}

func TestHistoryPersists(t *testing.T) {
	h, path := openTestHistory(t)

	added, err := h.SaveMapped(MappedCategory{Category: "Civic & Community Impact", Justification: "volunteers weekly"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = h.SaveMapped(MappedCategory{Category: "Civic & Community Impact"})
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, h.AddInteraction(Interaction{Question: "q1", Answer: "a1", MappedCategory: "Civic & Community Impact"}))
	require.NoError(t, h.AddInteraction(Interaction{Question: "q2", Answer: "a2", MappedCategory: LabelWeakFit}))
	require.NoError(t, h.SetNextQuestion("q2"))

	reopened, err := OpenHistory(path)
	require.NoError(t, err)
	assert.Equal(t, h.Mapped(), reopened.Mapped())
	assert.Equal(t, h.Interactions(), reopened.Interactions())
	assert.Equal(t, "q2", reopened.NextQuestion())
	assert.Equal(t, []string{"Civic & Community Impact"}, reopened.MappedNames())
	assert.True(t, reopened.IsMapped("Civic & Community Impact"))
	assert.False(t, reopened.IsMapped("civic & community impact"))

	assert.Equal(t, "volunteers weekly", reopened.Mapped()[0].Justification)
	assert.False(t, reopened.Mapped()[0].DateIdentified.IsZero())
}

func TestHistoryStats(t *testing.T) {
	h, _ := openTestHistory(t)

	stats := h.Stats()
	assert.Zero(t, stats.TotalMapped)
	assert.Nil(t, stats.LastInteraction)
	assert.Len(t, stats.Unmapped, Total)

	_, err := h.SaveMapped(MappedCategory{Category: "Human Skills (Durable)"})
	require.NoError(t, err)
	require.NoError(t, h.AddInteraction(Interaction{Question: "q1", Answer: "a1"}))
	require.NoError(t, h.AddInteraction(Interaction{Question: "q2", Answer: "a2"}))

	stats = h.Stats()
	assert.Equal(t, 1, stats.TotalMapped)
	assert.Equal(t, 2, stats.TotalInteractions)
	assert.Equal(t, 13, stats.Completion)
	require.NotNil(t, stats.LastInteraction)
	assert.Equal(t, h.Interactions()[1].Timestamp, *stats.LastInteraction)
	assert.NotContains(t, stats.Unmapped, "Human Skills (Durable)")
}

func TestHistoryClear(t *testing.T) {
	h, path := openTestHistory(t)
	require.NoError(t, h.AddInteraction(Interaction{Question: "q", Answer: "a"}))

	require.NoError(t, h.Clear())
	assert.Empty(t, h.Interactions())
	assert.Empty(t, h.NextQuestion())
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, h.Clear())
}
