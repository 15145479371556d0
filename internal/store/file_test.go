package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "research_db.json"), nil)
	require.NoError(t, err)
	return s
}

func storedReport(id string, daysAgo int) *types.ResearchReport {
	return &types.ResearchReport{
		ReportID: id,
		Title:    "report " + id,
		Date:     time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestFileStore_EmptyWhenAbsent(t *testing.T) {
	s := tempStore(t)
	reports, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFileStore_AppendNewDedupsByID(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	n, err := s.AppendNew(ctx, []*types.ResearchReport{
		storedReport("r1", 2), storedReport("r2", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-appending the same ids inserts nothing.
	n, err = s.AppendNew(ctx, []*types.ResearchReport{
		storedReport("r1", 2), storedReport("r3", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reports, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestFileStore_LoadAllSortedByDateDesc(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	_, err := s.AppendNew(ctx, []*types.ResearchReport{
		storedReport("old", 5), storedReport("new", 0), storedReport("mid", 2),
	})
	require.NoError(t, err)

	reports, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "new", reports[0].ReportID)
	assert.Equal(t, "mid", reports[1].ReportID)
	assert.Equal(t, "old", reports[2].ReportID)
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "research_db.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{not json"), 0o644))

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	reports, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)

	// Appending over the corrupt file recovers it.
	n, err := s.AppendNew(context.Background(), []*types.ResearchReport{storedReport("r1", 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.AppendNew(ctx, []*types.ResearchReport{
				storedReport("shared", 1),
				storedReport("unique_"+string(rune('a'+i)), 0),
			})
		}(i)
	}
	wg.Wait()

	reports, err := s.LoadAll(ctx)
	require.NoError(t, err)

	ids := map[string]int{}
	for _, r := range reports {
		ids[r.ReportID]++
	}
	assert.Equal(t, 1, ids["shared"], "identity dedup must hold under concurrency")
	assert.Len(t, reports, 9)
}
