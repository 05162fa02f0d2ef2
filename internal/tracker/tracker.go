// Package tracker drives imports of hand-history directories into storage
// and assembles the per-player rake and profit results.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/raketracker/internal/handhistory"
	"github.com/lox/raketracker/internal/period"
	"github.com/lox/raketracker/internal/statistics"
	"github.com/lox/raketracker/internal/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var ErrNotDirectory = errors.New("tracker: import path is not a directory")

// Store is the persistence the tracker needs.
type Store interface {
	KnownIDs(ctx context.Context) (handhistory.IDSet, error)
	InsertMany(ctx context.Context, hands []handhistory.HandRecord) (int, error)
	Clear(ctx context.Context) error
	RecordImport(ctx context.Context, run storage.ImportRun) (storage.ImportRun, error)
	RakeShares(ctx context.Context, player string, w period.Window) ([]statistics.Entry, error)
	Profits(ctx context.Context, player string, w period.Window) ([]statistics.Entry, error)
}

// Options configure a Tracker. Zero values pick sensible defaults.
type Options struct {
	Workers  int
	Location *time.Location
	Clock    quartz.Clock
	Logger   *log.Logger
}

// Tracker imports hand histories and reports on them. Imports must not run
// concurrently on the same store.
type Tracker struct {
	store    Store
	splitter *handhistory.Splitter
	resolver *period.Resolver
	clock    quartz.Clock
	workers  int
	logger   *log.Logger
}

// New returns a tracker over store.
func New(store Store, opts Options) *Tracker {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	parser := handhistory.NewParser(handhistory.Options{Location: opts.Location})
	return &Tracker{
		store:    store,
		splitter: handhistory.NewSplitter(parser, opts.Logger.WithPrefix("splitter")),
		resolver: period.NewResolver(opts.Clock),
		clock:    opts.Clock,
		workers:  opts.Workers,
		logger:   opts.Logger.WithPrefix("import"),
	}
}

// Resolver exposes the period resolver bound to the tracker's clock.
func (t *Tracker) Resolver() *period.Resolver {
	return t.resolver
}

// ImportResult summarizes one import.
type ImportResult struct {
	storage.ImportRun
	Duplicates int // hands repeated across files in this run
	Rejects    []*handhistory.ParseError
}

type fileBatch struct {
	path  string
	batch handhistory.Batch
}

// Import parses every .txt file below dir and stores the new hands in a
// single transaction. Files are parsed in parallel against one snapshot of
// known ids; when the same hand appears in several files the first file in
// walk order wins.
func (t *Tracker) Import(ctx context.Context, dir string) (ImportResult, error) {
	started := t.clock.Now()
	result := ImportResult{ImportRun: storage.ImportRun{StartedAt: started, Dir: dir}}

	files, err := handFiles(dir)
	if err != nil {
		return result, err
	}
	result.Files = len(files)
	t.logger.Info("import started", "dir", dir, "files", len(files), "workers", t.workers)

	known, err := t.store.KnownIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("load known hands: %w", err)
	}

	batches := make([]fileBatch, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			batches[i] = fileBatch{path: path, batch: t.splitter.Split(string(data), known)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	hands := t.merge(batches, &result)

	inserted, err := t.store.InsertMany(ctx, hands)
	if err != nil {
		return result, fmt.Errorf("store hands: %w", err)
	}
	result.Imported = inserted
	result.FinishedAt = t.clock.Now()

	run, err := t.store.RecordImport(ctx, result.ImportRun)
	if err != nil {
		return result, err
	}
	result.ImportRun = run

	t.logger.Info("import finished",
		"run", run.ID,
		"imported", result.Imported,
		"rejected", result.Rejected,
		"skipped", result.Skipped,
		"tournaments", result.Tournaments,
		"duration", result.Duration())
	return result, nil
}

func (t *Tracker) merge(batches []fileBatch, result *ImportResult) []handhistory.HandRecord {
	seen := handhistory.NewIDSet()
	var hands []handhistory.HandRecord
	for _, fb := range batches {
		b := fb.batch
		if b.Tournament {
			result.Tournaments++
			t.logger.Debug("skipping tournament file", "file", fb.path)
			continue
		}
		result.Skipped += b.Skipped
		result.Rejected += len(b.Rejects)
		result.Rejects = append(result.Rejects, b.Rejects...)

		for _, h := range b.Hands {
			if seen.Contains(h.ID) {
				result.Duplicates++
				continue
			}
			seen[h.ID] = struct{}{}
			hands = append(hands, h)
		}
	}
	return hands
}

// handFiles lists the .txt files below dir in lexical walk order.
func handFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("import dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

// Reset removes every stored hand.
func (t *Tracker) Reset(ctx context.Context) error {
	t.logger.Warn("clearing stored hands")
	return t.store.Clear(ctx)
}

// Rake summarizes the player's rake share over the window.
func (t *Tracker) Rake(ctx context.Context, player string, w period.Window) (statistics.Summary, error) {
	entries, err := t.store.RakeShares(ctx, player, w)
	if err != nil {
		return statistics.Summary{}, err
	}
	return statistics.Summarize(entries), nil
}

// ProfitReport is the player's profit over a window plus the running total
// used for the chart.
type ProfitReport struct {
	statistics.Summary
	Cumulative []decimal.Decimal
	Spread     statistics.Descriptive
	From, To   time.Time // first and last hand, zero when empty
}

// Profit summarizes the player's results over the window.
func (t *Tracker) Profit(ctx context.Context, player string, w period.Window) (ProfitReport, error) {
	entries, err := t.store.Profits(ctx, player, w)
	if err != nil {
		return ProfitReport{}, err
	}
	r := ProfitReport{
		Summary:    statistics.Summarize(entries),
		Cumulative: statistics.Cumulative(statistics.Amounts(entries)),
		Spread:     statistics.Describe(entries),
	}
	if len(entries) > 0 {
		r.From = entries[0].Time
		r.To = entries[len(entries)-1].Time
	}
	return r, nil
}

// Results is everything the results command shows for one player.
type Results struct {
	Player string
	Period string
	Window period.Window
	Rake   statistics.Summary
	Profit ProfitReport
}

// Results resolves expr and gathers rake and profit for player.
func (t *Tracker) Results(ctx context.Context, player, expr string) (Results, error) {
	w, err := t.resolver.Parse(expr)
	if err != nil {
		return Results{}, err
	}
	label := period.Names[period.Token(expr)]
	if label == "" {
		label = expr
	}
	if label == "" {
		label = period.Names[period.AllTime]
	}

	res := Results{Player: player, Period: label, Window: w}
	if res.Rake, err = t.Rake(ctx, player, w); err != nil {
		return Results{}, err
	}
	if res.Profit, err = t.Profit(ctx, player, w); err != nil {
		return Results{}, err
	}
	t.logger.Debug("results computed", "player", player, "period", label,
		"hands", res.Profit.Hands, "rake", res.Rake.Total, "profit", res.Profit.Total)
	return res, nil
}
