// Package handhistory turns raw 888poker cash-game hand histories into
// validated HandRecords and attributes the collected rake to the players
// who paid into each pot. All amounts are integer cents.
package handhistory

import (
	"fmt"
	"time"
)

// Game identifies a supported poker variant.
type Game string

const (
	NLHE Game = "NLHE"
	PLO4 Game = "PLO4"
)

// Participant is one seated player's money flow in a single hand.
type Participant struct {
	Seat        int
	Name        string
	Cards       string // space separated, empty when never revealed
	Contributed int64  // bets plus ante
	Ante        int64  // dead blind portion of Contributed
	Collected   int64
}

// Net returns what the player won or lost in the hand.
func (p Participant) Net() int64 {
	return p.Collected - p.Contributed
}

// HandRecord is the reconciled result of parsing one hand. It is never
// mutated after Parse returns it.
type HandRecord struct {
	ID           int64
	PlayedAt     time.Time // UTC
	RawText      string
	Game         Game
	Limit        int64 // big blind in cents, 0 when unknown
	PlayerCount  int
	Pot          int64
	Rake         int64
	AnteTotal    int64
	Flop         bool
	Participants []Participant
}

// Participant looks up a player by name.
func (h *HandRecord) Participant(name string) (Participant, bool) {
	for _, p := range h.Participants {
		if p.Name == name {
			return p, true
		}
	}
	return Participant{}, false
}

// Validate checks the accounting identities every stored hand must satisfy.
func (h *HandRecord) Validate() error {
	if h.ID <= 0 {
		return fmt.Errorf("hand %d: id must be positive", h.ID)
	}
	if h.Rake < 0 {
		return fmt.Errorf("hand %d: %w", h.ID, ErrNegativeRake)
	}
	if h.Rake > 0 && !h.Flop {
		return fmt.Errorf("hand %d: %w", h.ID, ErrRakeWithoutFlop)
	}

	var bets, antes, collected int64
	for _, p := range h.Participants {
		bets += p.Contributed - p.Ante
		antes += p.Ante
		collected += p.Collected
	}
	if antes != h.AnteTotal {
		return fmt.Errorf("hand %d: ante mismatch: participants=%d total=%d", h.ID, antes, h.AnteTotal)
	}
	if bets+h.AnteTotal != h.Pot {
		return fmt.Errorf("hand %d: pot mismatch: bets=%d antes=%d pot=%d", h.ID, bets, h.AnteTotal, h.Pot)
	}
	if collected != h.Pot-h.Rake {
		return fmt.Errorf("hand %d: collected mismatch: collected=%d pot=%d rake=%d", h.ID, collected, h.Pot, h.Rake)
	}
	return nil
}

// IDSet is an immutable snapshot of hand identifiers already in storage.
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is known. A nil set contains nothing.
func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}
