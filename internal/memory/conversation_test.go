package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_PersistsAndReloads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	c, err := Open(dir, "s1", nil)
	require.NoError(t, err)
	_, err = c.AddInteraction("hi", "hello")
	require.NoError(t, err)
	_, err = c.AddInteraction("<b>price?</b>", "12 & up")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "session_s1_history.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<b>price?</b>", "html is not escaped")

	var onDisk []map[string]string
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 2)
	assert.Equal(t, "hi", onDisk[0]["user"])
	assert.Equal(t, "hello", onDisk[0]["reply"])
	assert.NotEmpty(t, onDisk[0]["timestamp"])

	reopened, err := Open(dir, "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, c.FullHistory(), reopened.FullHistory())
}

func TestConversation_HistoryGrowsByOnePerTurn(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir(), "grow", nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		before := c.FullHistory()
		_, err := c.AddInteraction("q", "a")
		require.NoError(t, err)
		after := c.FullHistory()
		require.Len(t, after, i)
		assert.Equal(t, before, after[:len(before)], "existing turns are never rewritten")
	}
}

func TestConversation_TimestampsNeverDecrease(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	clock := func() time.Time { tt := times[i]; i++; return tt }

	c, err := Open(t.TempDir(), "clock", nil, WithClock(clock))
	require.NoError(t, err)
	for range times {
		_, err := c.AddInteraction("q", "a")
		require.NoError(t, err)
	}

	var prev time.Time
	for _, turn := range c.FullHistory() {
		ts, err := turn.Time()
		require.NoError(t, err)
		assert.False(t, ts.Before(prev))
		prev = ts
	}
	assert.Equal(t, base.Add(time.Second), prev)
}

func TestConversation_RecentWindow(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir(), "win", nil)
	require.NoError(t, err)
	for _, u := range []string{"1", "2", "3", "4"} {
		_, err := c.AddInteraction(u, "r"+u)
		require.NoError(t, err)
	}

	win := c.RecentWindow(2)
	require.Len(t, win, 2)
	assert.Equal(t, "3", win[0].User)
	assert.Equal(t, "4", win[1].User)

	assert.Len(t, c.RecentWindow(10), 4)
	assert.Empty(t, c.RecentWindow(0))
}

func TestConversation_MalformedFileStartsEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(HistoryPath(dir, "bad"), []byte("{not json"), 0o644))

	c, err := Open(dir, "bad", nil)
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	_, err = c.AddInteraction("q", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestConversation_FormattedHistory(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir(), "fmt", nil)
	require.NoError(t, err)
	assert.Empty(t, c.FormattedHistory())

	_, _ = c.AddInteraction("top products?", "Widgets")
	_, _ = c.AddInteraction("and last month?", "Gadgets")

	want := "User: top products?\nAssistant: Widgets\nUser: and last month?\nAssistant: Gadgets"
	assert.Equal(t, want, c.FormattedHistory())
}

func TestConversation_ConcurrentAdds(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir(), "conc", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.AddInteraction("q", "a")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, c.Len())

	reopened, err := Open(filepath.Dir(c.Path()), "conc", nil)
	require.NoError(t, err)
	assert.Equal(t, 20, reopened.Len())
}

func TestHistoryPath_EscapesID(t *testing.T) {
	t.Parallel()
	p := HistoryPath("/data", "tg:123/abc")
	assert.Equal(t, filepath.Join("/data", "session_tg%3A123%2Fabc_history.json"), p)

	id, ok := SessionIDFromPath(p)
	require.True(t, ok)
	assert.Equal(t, "tg:123/abc", id)

	_, ok = SessionIDFromPath("/data/notes.json")
	assert.False(t, ok)
	_, ok = SessionIDFromPath("/data/session_bad%zz_history.json")
	assert.False(t, ok)
}

func TestHistoryPath_DistinctIDsNeverShareAFile(t *testing.T) {
	t.Parallel()
	ids := []string{"shop:1", "shop_1", "shop%3A1", "cli:direct", "cli_direct", " a", "a", "a ", "x/y", "x\\y", "销售:1"}

	seen := map[string]string{}
	for _, id := range ids {
		p := HistoryPath("/data", id)
		if prev, dup := seen[p]; dup {
			t.Fatalf("%q and %q both map to %s", prev, id, p)
		}
		seen[p] = id

		back, ok := SessionIDFromPath(p)
		require.True(t, ok, id)
		assert.Equal(t, id, back)
	}
}

func TestConversation_LookalikeIDsKeepSeparateHistory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	a, err := Open(dir, "shop:1", nil)
	require.NoError(t, err)
	b, err := Open(dir, "shop_1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path(), b.Path())

	_, err = a.AddInteraction("q-a", "r-a")
	require.NoError(t, err)
	_, err = b.AddInteraction("q-b", "r-b")
	require.NoError(t, err)

	reloaded, err := Open(dir, "shop:1", nil)
	require.NoError(t, err)
	hist := reloaded.FullHistory()
	require.Len(t, hist, 1)
	assert.Equal(t, "q-a", hist[0].User)
}

func TestConversation_EmptyHistoryIsNotNil(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir(), "empty", nil)
	require.NoError(t, err)
	assert.NotNil(t, c.FullHistory())
	assert.Empty(t, c.FullHistory())
	assert.Equal(t, []Turn{}, c.RecentWindow(3))
}
