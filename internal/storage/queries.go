package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lox/raketracker/internal/period"
	"github.com/lox/raketracker/internal/statistics"
	"github.com/shopspring/decimal"
)

// RakeShares returns the player's share of the rake for every hand in the
// window where they put money in and rake was taken. The share is
// rake * contributed / pot, in cents, ordered by play time.
func (s *Store) RakeShares(ctx context.Context, player string, w period.Window) ([]statistics.Entry, error) {
	rows, err := s.playerRows(ctx, `
		SELECT h.played_at, h.rake, h.pot, p.contributed
		FROM participants p JOIN hands h ON h.id = p.hand_id
		WHERE p.name = ? AND p.contributed > 0 AND h.rake > 0`, player, w)
	if err != nil {
		return nil, fmt.Errorf("query rake shares for %s: %w", player, err)
	}
	defer rows.Close()

	entries := []statistics.Entry{}
	for rows.Next() {
		var playedAt, rake, pot, contributed int64
		if err := rows.Scan(&playedAt, &rake, &pot, &contributed); err != nil {
			return nil, fmt.Errorf("scan rake share: %w", err)
		}
		if pot <= 0 {
			continue
		}
		share := decimal.NewFromInt(rake).
			Mul(decimal.NewFromInt(contributed)).
			Div(decimal.NewFromInt(pot))
		entries = append(entries, statistics.Entry{Time: time.Unix(playedAt, 0).UTC(), Amount: share})
	}
	return entries, rows.Err()
}

// Profits returns collected minus contributed, in cents, for every hand in
// the window where the player put money in, ordered by play time.
func (s *Store) Profits(ctx context.Context, player string, w period.Window) ([]statistics.Entry, error) {
	rows, err := s.playerRows(ctx, `
		SELECT h.played_at, p.collected - p.contributed
		FROM participants p JOIN hands h ON h.id = p.hand_id
		WHERE p.name = ? AND p.contributed > 0`, player, w)
	if err != nil {
		return nil, fmt.Errorf("query profits for %s: %w", player, err)
	}
	defer rows.Close()

	entries := []statistics.Entry{}
	for rows.Next() {
		var playedAt, net int64
		if err := rows.Scan(&playedAt, &net); err != nil {
			return nil, fmt.Errorf("scan profit: %w", err)
		}
		entries = append(entries, statistics.Entry{Time: time.Unix(playedAt, 0).UTC(), Amount: decimal.NewFromInt(net)})
	}
	return entries, rows.Err()
}

// Players lists every name seen at the tables with their hand count, most
// active first.
func (s *Store) Players(ctx context.Context) ([]PlayerCount, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, COUNT(*) AS hands FROM participants
		GROUP BY name ORDER BY hands DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []PlayerCount
	for rows.Next() {
		var pc PlayerCount
		if err := rows.Scan(&pc.Name, &pc.Hands); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// PlayerCount is a player name and how many stored hands they sat in.
type PlayerCount struct {
	Name  string
	Hands int
}

// playerRows appends the window bounds and ordering to a query whose first
// placeholder is the player name.
func (s *Store) playerRows(ctx context.Context, query, player string, w period.Window) (*sql.Rows, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	var sb strings.Builder
	sb.WriteString(query)
	args := []any{player}
	if !w.Start.IsZero() {
		sb.WriteString(" AND h.played_at >= ?")
		args = append(args, w.Start.UTC().Unix())
	}
	if !w.End.IsZero() {
		sb.WriteString(" AND h.played_at < ?")
		args = append(args, w.End.UTC().Unix())
	}
	sb.WriteString(" ORDER BY h.played_at, h.id")

	return s.db.QueryContext(ctx, sb.String(), args...)
}
