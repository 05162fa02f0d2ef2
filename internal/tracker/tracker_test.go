package tracker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/raketracker/internal/handhistory"
	"github.com/lox/raketracker/internal/statistics"
	"github.com/lox/raketracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "handhistory", "testdata", name))
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func writeFile(t *testing.T, path string, hands ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(hands, "\n\n\n")+"\n"), 0o644))
}

// handDir lays out four hand files: one valid and one rejected hand, two
// valid hands, a repeat of the first hand in a subdirectory, and a
// tournament. A markdown file is ignored.
func handDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), fixture(t, "uncalled_raise.txt"), fixture(t, "rake_no_flop.txt"))
	writeFile(t, filepath.Join(dir, "b.txt"), fixture(t, "dead_blind_omaha.txt"), fixture(t, "split_pot.txt"))
	writeFile(t, filepath.Join(dir, "sub", "c.TXT"), fixture(t, "uncalled_raise.txt"))
	writeFile(t, filepath.Join(dir, "tourney.txt"), fixture(t, "tournament.txt"))
	writeFile(t, filepath.Join(dir, "notes.md"), "not a hand history file at all")
	return dir
}

type harness struct {
	tracker *Tracker
	store   *storage.Store
	clock   *quartz.Mock
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, workers int) *harness {
	t.Helper()
	store, err := storage.Open(context.Background(), storage.Config{Path: storage.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mClock := quartz.NewMock(t)
	mClock.Set(time.Date(2023, time.November, 25, 10, 0, 0, 0, time.UTC))

	logs := &bytes.Buffer{}
	tr := New(store, Options{Workers: workers, Clock: mClock, Logger: log.New(logs)})
	return &harness{tracker: tr, store: store, clock: mClock, logs: logs}
}

func TestImport(t *testing.T) {
	for _, workers := range []int{1, 4} {
		h := newHarness(t, workers)
		dir := handDir(t)

		res, err := h.tracker.Import(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, 4, res.Files)
		assert.Equal(t, 3, res.Imported)
		assert.Equal(t, 1, res.Rejected)
		assert.Equal(t, 1, res.Tournaments)
		assert.Equal(t, 1, res.Duplicates)
		assert.Zero(t, res.Skipped)
		require.Len(t, res.Rejects, 1)
		assert.ErrorIs(t, res.Rejects[0], handhistory.ErrRakeWithoutFlop)
		assert.Contains(t, h.logs.String(), "1000000002")

		ids, err := h.store.KnownIDs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, handhistory.NewIDSet(1000000001, 1000000003, 1000000004), ids)
	}
}

func TestImportStoresValidHandsAlongsideMalformedOnes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	dir := t.TempDir()

	pot := fixture(t, "split_pot.txt")
	doubleSeat := strings.ReplaceAll(
		strings.Replace(pot, "Seat 3: carol ( $10 )", "Seat 3: carol ( $10 )\nSeat 5: alice ( $3 )", 1),
		"1000000004", "1000000099")
	zeroID := strings.ReplaceAll(pot, "1000000004", "0000000")
	writeFile(t, filepath.Join(dir, "session.txt"), fixture(t, "uncalled_raise.txt"), doubleSeat, zeroID)

	res, err := h.tracker.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Rejected)
	require.Len(t, res.Rejects, 2)
	assert.ErrorIs(t, res.Rejects[0], handhistory.ErrDuplicateSeat)
	assert.ErrorIs(t, res.Rejects[1], handhistory.ErrInvalidID)

	ids, err := h.store.KnownIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, handhistory.NewIDSet(1000000001), ids)
}

func TestImportTwiceInsertsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	dir := handDir(t)

	_, err := h.tracker.Import(ctx, dir)
	require.NoError(t, err)

	res, err := h.tracker.Import(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, 1, res.Rejected)

	runs, err := h.store.Imports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestImportRecordsRun(t *testing.T) {
	h := newHarness(t, 1)
	dir := handDir(t)

	res, err := h.tracker.Import(context.Background(), dir)
	require.NoError(t, err)

	runs, err := h.store.Imports(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.ID, runs[0].ID)
	assert.Equal(t, dir, runs[0].Dir)
	assert.Equal(t, time.Date(2023, time.November, 25, 10, 0, 0, 0, time.UTC), runs[0].StartedAt)
	assert.Equal(t, 3, runs[0].Imported)
}

func TestImportBadDirectory(t *testing.T) {
	h := newHarness(t, 1)

	_, err := h.tracker.Import(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "hand.txt")
	writeFile(t, file, fixture(t, "uncalled_raise.txt"))
	_, err = h.tracker.Import(context.Background(), file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestImportCancelled(t *testing.T) {
	h := newHarness(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.tracker.Import(ctx, handDir(t))
	require.Error(t, err)

	n, err := h.store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResetThenImport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	dir := handDir(t)

	_, err := h.tracker.Import(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, h.tracker.Reset(ctx))

	res, err := h.tracker.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	_, err := h.tracker.Import(ctx, handDir(t))
	require.NoError(t, err)

	res, err := h.tracker.Results(ctx, "alice", "all")
	require.NoError(t, err)

	assert.Equal(t, "All Time", res.Period)
	assert.Equal(t, 3, res.Profit.Hands)
	assert.Equal(t, "80", res.Profit.Total.String())
	assert.Equal(t, []string{"2023-11", "2023-12"}, keys(res.Profit.Monthly))
	assert.Equal(t, []string{"2023-46", "2023-47", "2023-52"}, keys(res.Profit.Weekly))
	require.Len(t, res.Profit.Cumulative, 3)
	assert.Equal(t, "780", res.Profit.Cumulative[0].String())
	assert.Equal(t, "80", res.Profit.Cumulative[2].String())
	assert.Equal(t, time.Date(2023, time.November, 15, 15, 23, 45, 0, time.UTC), res.Profit.From)
	assert.NoError(t, res.Profit.Validate())

	// 20*600/1400 + 10*600/1600 + 100*100/2650
	assert.Equal(t, 3, res.Rake.Hands)
	assert.InDelta(t, 16.0950, res.Rake.Total.InexactFloat64(), 1e-4)
	assert.NoError(t, res.Rake.Validate())
}

func TestResultsWindowed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	_, err := h.tracker.Import(ctx, handDir(t))
	require.NoError(t, err)

	res, err := h.tracker.Results(ctx, "alice", "cm")
	require.NoError(t, err)
	assert.Equal(t, "Current Month", res.Period)
	assert.Equal(t, 2, res.Profit.Hands)
	assert.Equal(t, "180", res.Profit.Total.String())

	res, err = h.tracker.Results(ctx, "carol", "between=01/11/2023-21/11/2023")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Profit.Hands)
	assert.Equal(t, "790", res.Profit.Total.String())

	_, err = h.tracker.Results(ctx, "alice", "fortnight")
	assert.Error(t, err)
}

func TestResultsUnknownPlayer(t *testing.T) {
	h := newHarness(t, 1)

	res, err := h.tracker.Results(context.Background(), "nobody", "")
	require.NoError(t, err)
	assert.Zero(t, res.Profit.Hands)
	assert.True(t, res.Rake.Total.IsZero())
	assert.Empty(t, res.Profit.Cumulative)
	assert.True(t, res.Profit.From.IsZero())
}

func keys(buckets []statistics.Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}
