package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func olderPaths(res *Result) []string {
	out := make([]string, 0, len(res.Pairs))
	for _, p := range res.Pairs {
		out = append(out, p.Older.Path)
	}
	sort.Strings(out)
	return out
}

func TestScan_TwoIdenticalFiles(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "a.xml"), "<same/>", date(2023, 1, 1))
	b := writeFile(t, filepath.Join(root, "b.xml"), "<same/>", date(2023, 6, 1))

	res, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, a, res.Pairs[0].Older.Path)
	assert.Equal(t, b, res.Pairs[0].Newer.Path)
	assert.Equal(t, int64(2), res.FilesScanned)
	assert.Empty(t, res.Skipped)
}

func TestScan_UniqueFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.xml"), "<a/>", date(2023, 1, 1))
	writeFile(t, filepath.Join(root, "b.xml"), "<b/>", date(2023, 1, 1))
	writeFile(t, filepath.Join(root, "x", "c.xml"), "<c/>", date(2023, 1, 1))

	res, err := New().Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, int64(3), res.FilesScanned)
}

func TestScan_NonXMLNeverVisited(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.xml"), "<same/>", date(2023, 6, 1))
	writeFile(t, filepath.Join(root, "a.txt"), "<same/>", date(2023, 1, 1))

	var (
		mu      sync.Mutex
		visited []string
	)
	s := New(WithProgress(func(ev ProgressEvent) {
		mu.Lock()
		visited = append(visited, ev.Path)
		mu.Unlock()
	}))

	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, []string{filepath.Join(root, "a.xml")}, visited)
}

func TestScan_FileVanishesBeforeRead(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "a.xml"), "<same/>", date(2023, 1, 1))
	b := writeFile(t, filepath.Join(root, "b.xml"), "<same/>", date(2023, 6, 1))
	gone := writeFile(t, filepath.Join(root, "gone.xml"), "<same/>", date(2022, 1, 1))

	s := New()
	s.fingerprint = func(path string) (FileRecord, error) {
		if path == gone {
			assert.NoError(t, os.Remove(gone))
		}
		return FingerprintFile(path)
	}

	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, a, res.Pairs[0].Older.Path)
	assert.Equal(t, b, res.Pairs[0].Newer.Path)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, gone, res.Skipped[0].Path)
	assert.ErrorIs(t, res.Skipped[0], os.ErrNotExist)
	assert.Equal(t, int64(3), res.FilesScanned)
}

func TestScan_EmptyRoot(t *testing.T) {
	res, err := New().Scan(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Zero(t, res.FilesScanned)
}

func TestScan_InvalidRoot(t *testing.T) {
	_, err := New().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, IsTraversal(err))
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.xml"), "<a/>", time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithWorkers(1)).Scan(ctx, root)
	// The only file may already be queued before the walker notices.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

// Every copy but the newest is the older member of exactly one pair, no
// matter which worker registers first.
func TestScan_NWayKeepsNewest(t *testing.T) {
	root := t.TempDir()
	var want []string
	for i, month := range []time.Month{time.March, time.January, time.December, time.June, time.September} {
		p := writeFile(t, filepath.Join(root, "d"+string(rune('a'+i)), "copy.xml"), "<dup/>", date(2023, month, 1))
		if month != time.December {
			want = append(want, p)
		}
	}
	newest := filepath.Join(root, "dc", "copy.xml")
	writeFile(t, filepath.Join(root, "unique.xml"), "<other/>", date(2023, 1, 1))
	sort.Strings(want)

	for _, workers := range []int{1, 2, 8, 64} {
		for iter := 0; iter < 10; iter++ {
			res, err := New(WithWorkers(workers)).Scan(context.Background(), root)
			require.NoError(t, err)
			require.Len(t, res.Pairs, 4)
			assert.Equal(t, want, olderPaths(res))
			for _, p := range res.Pairs {
				assert.NotEqual(t, newest, p.Older.Path)
			}
		}
	}
}

func TestScan_RetainFirstPairsAgainstWinner(t *testing.T) {
	root := t.TempDir()
	for i, month := range []time.Month{time.January, time.June, time.September} {
		writeFile(t, filepath.Join(root, string(rune('a'+i))+".xml"), "<dup/>", date(2023, month, 1))
	}

	res, err := New(WithRetention(RetainFirst), WithWorkers(1)).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 2)

	// Both pairs share one member: the record that registered first.
	shared := map[string]int{}
	for _, p := range res.Pairs {
		shared[p.Older.Path]++
		shared[p.Newer.Path]++
	}
	var winners int
	for _, n := range shared {
		if n == 2 {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestScan_SecondRunFindsNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.xml"), "<same/>", date(2023, 1, 1))
	writeFile(t, filepath.Join(root, "b", "b.xml"), "<same/>", date(2023, 3, 1))
	writeFile(t, filepath.Join(root, "c", "c.xml"), "<same/>", date(2023, 6, 1))
	writeFile(t, filepath.Join(root, "d.xml"), "<d/>", date(2023, 6, 1))
	writeFile(t, filepath.Join(root, "e.xml"), "<d/>", date(2023, 2, 1))

	s := New()
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 3)
	for _, p := range res.Pairs {
		require.NoError(t, os.Remove(p.Older.Path))
	}

	res, err = s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, int64(2), res.FilesScanned)
	assert.Equal(t, int64(2), s.FileCount())
	assert.Positive(t, s.ElapsedTime())
}

func TestNew_Defaults(t *testing.T) {
	s := New(WithWorkers(0), WithLogger(nil))
	assert.Equal(t, DefaultWorkers, s.workers)
	assert.Equal(t, DefaultExtension, s.ext)
	assert.Equal(t, RetainNewest, s.retention)
	assert.NotNil(t, s.log)
	assert.Zero(t, s.ElapsedTime())
}
