// Package storage persists parsed hands in SQLite and answers the per-player
// rake and profit queries the reports are built from.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/raketracker/internal/handhistory"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var (
	ErrClosed       = errors.New("storage: store is closed")
	ErrHandNotFound = errors.New("storage: hand not found")
)

// Config holds database configuration.
type Config struct {
	Path   string
	Logger *log.Logger
}

// Store wraps the SQLite connection.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open connects to the database at cfg.Path, creating the file and its
// directory when needed, and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}
	memory := path == MemoryPath || strings.HasPrefix(path, "file:")
	if !memory {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		path = abs
	}

	db, err := sql.Open("sqlite", connString(path, memory))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// Every connection to :memory: is a separate database, and SQLite has a
	// single writer anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger.Debug("database opened", "path", path)

	return &Store{db: db, path: path, logger: logger}, nil
}

func connString(path string, memory bool) string {
	conn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		conn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	return conn
}

// Path returns the resolved database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// KnownIDs snapshots every stored hand id.
func (s *Store) KnownIDs(ctx context.Context) (handhistory.IDSet, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM hands`)
	if err != nil {
		return nil, fmt.Errorf("query hand ids: %w", err)
	}
	defer rows.Close()

	ids := handhistory.NewIDSet()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan hand id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Count returns the number of stored hands.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hands`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hands: %w", err)
	}
	return n, nil
}

// InsertMany stores hands in one transaction. Hands whose id is already
// present are ignored; the returned count covers only new rows. A hand that
// fails validation aborts the whole batch.
func (s *Store) InsertMany(ctx context.Context, hands []handhistory.HandRecord) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	if len(hands) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	handStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO hands
			(id, played_at, game, limit_cents, player_count, pot, rake, ante_total, flop, raw_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare hand insert: %w", err)
	}
	defer handStmt.Close()

	partStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO participants (hand_id, seat, name, cards, contributed, ante, collected)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare participant insert: %w", err)
	}
	defer partStmt.Close()

	inserted := 0
	for i := range hands {
		h := &hands[i]
		if err := h.Validate(); err != nil {
			return 0, fmt.Errorf("refusing to store invalid hand: %w", err)
		}

		res, err := handStmt.ExecContext(ctx,
			h.ID, h.PlayedAt.UTC().Unix(), string(h.Game), h.Limit, h.PlayerCount,
			h.Pot, h.Rake, h.AnteTotal, h.Flop, h.RawText)
		if err != nil {
			return 0, fmt.Errorf("insert hand %d: %w", h.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert hand %d: %w", h.ID, err)
		}
		if affected == 0 {
			continue
		}

		for _, p := range h.Participants {
			if _, err := partStmt.ExecContext(ctx,
				h.ID, p.Seat, p.Name, p.Cards, p.Contributed, p.Ante, p.Collected); err != nil {
				return 0, fmt.Errorf("insert hand %d participant %s: %w", h.ID, p.Name, err)
			}
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit hands: %w", err)
	}
	s.logger.Debug("hands stored", "offered", len(hands), "inserted", inserted)
	return inserted, nil
}

// Hand loads one stored hand with its participants in seat order.
func (s *Store) Hand(ctx context.Context, id int64) (*handhistory.HandRecord, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	var (
		h        handhistory.HandRecord
		playedAt int64
		game     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, played_at, game, limit_cents, player_count, pot, rake, ante_total, flop, raw_text
		FROM hands WHERE id = ?`, id).
		Scan(&h.ID, &playedAt, &game, &h.Limit, &h.PlayerCount, &h.Pot, &h.Rake, &h.AnteTotal, &h.Flop, &h.RawText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrHandNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load hand %d: %w", id, err)
	}
	h.PlayedAt = time.Unix(playedAt, 0).UTC()
	h.Game = handhistory.Game(game)

	rows, err := s.db.QueryContext(ctx, `
		SELECT seat, name, cards, contributed, ante, collected
		FROM participants WHERE hand_id = ? ORDER BY seat`, id)
	if err != nil {
		return nil, fmt.Errorf("load hand %d participants: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p handhistory.Participant
		if err := rows.Scan(&p.Seat, &p.Name, &p.Cards, &p.Contributed, &p.Ante, &p.Collected); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		h.Participants = append(h.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &h, nil
}

// Clear removes every stored hand. Import history is kept.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM participants`, `DELETE FROM hands`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear hands: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear hands: %w", err)
	}
	s.logger.Info("hands cleared")
	return nil
}
