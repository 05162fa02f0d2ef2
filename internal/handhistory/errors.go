package handhistory

import (
	"errors"
	"fmt"
)

// Rejection reasons. Every hand that fails to parse is reported with one of
// these wrapped in a *ParseError.
var (
	ErrUnsupportedGame      = errors.New("handhistory: unsupported game type")
	ErrInvalidID            = errors.New("handhistory: hand id must be positive")
	ErrMissingNames         = errors.New("handhistory: missing player names")
	ErrDuplicateSeat        = errors.New("handhistory: player seated twice")
	ErrUnknownPlayer        = errors.New("handhistory: action by unseated player")
	ErrMissingTimestamp     = errors.New("handhistory: no timestamp")
	ErrUnparsableAmount     = errors.New("handhistory: unparsable amount")
	ErrIncompleteHand       = errors.New("handhistory: incomplete hand")
	ErrNegativeRake         = errors.New("handhistory: negative rake")
	ErrRakeWithoutFlop      = errors.New("handhistory: rake without flop")
	ErrUnbalancedHand       = errors.New("handhistory: contributions do not balance")
	ErrAmbiguousBlock       = errors.New("handhistory: ambiguous block boundary")
	ErrUnrecognizedFragment = errors.New("handhistory: unrecognized fragment")
)

// ParseError ties a rejection reason to the hand it was raised for.
type ParseError struct {
	HandID int64
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("hand %d: %v", e.HandID, e.Err)
	}
	return fmt.Sprintf("hand %d: %v (%s)", e.HandID, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

func reject(id int64, err error, format string, args ...any) *ParseError {
	return &ParseError{HandID: id, Err: err, Detail: fmt.Sprintf(format, args...)}
}
