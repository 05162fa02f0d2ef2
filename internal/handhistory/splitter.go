package handhistory

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	tournamentMarker = "Tournament #"
	minBlockLength   = 20
)

var (
	handIDRe    = regexp.MustCompile(`888poker Hand History for Game (\d{7,12})`)
	separatorRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// Batch is the outcome of splitting one hand-history file.
type Batch struct {
	Hands      []HandRecord
	Rejects    []*ParseError
	Skipped    int  // hands already known to storage
	Tournament bool // the whole file was ignored
}

// Splitter breaks a multi-hand file into blocks and drives the Parser over
// each of them.
type Splitter struct {
	parser *Parser
	logger *log.Logger
}

// NewSplitter creates a splitter. A nil logger discards diagnostics.
func NewSplitter(parser *Parser, logger *log.Logger) *Splitter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Splitter{parser: parser, logger: logger}
}

// Split parses every hand in text whose id is not in known. A malformed hand
// is logged and recorded in Batch.Rejects; it never stops the rest of the
// file from being processed.
func (s *Splitter) Split(text string, known IDSet) Batch {
	var batch Batch

	if strings.Contains(text, tournamentMarker) {
		s.logger.Debug("Skipping tournament hand history")
		batch.Tournament = true
		return batch
	}

	ids := HandIDs(text)
	if len(ids) == 0 {
		return batch
	}
	allKnown := true
	for _, id := range ids {
		if !known.Contains(id) {
			allKnown = false
			break
		}
	}
	if allKnown {
		batch.Skipped = len(ids)
		return batch
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, block := range separatorRe.Split(text, -1) {
		if len(strings.TrimSpace(block)) < minBlockLength {
			continue
		}

		blockIDs := HandIDs(block)
		switch {
		case len(blockIDs) == 0:
			s.rejectBlock(&batch, &ParseError{Err: ErrUnrecognizedFragment, Detail: preview(block)})
			continue
		case len(blockIDs) > 1:
			s.rejectBlock(&batch, &ParseError{HandID: blockIDs[0], Err: ErrAmbiguousBlock, Detail: formatIDs(blockIDs)})
			continue
		}

		id := blockIDs[0]
		if known.Contains(id) {
			batch.Skipped++
			continue
		}

		hand, err := s.parser.Parse(id, strings.TrimSpace(block))
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				perr = &ParseError{HandID: id, Err: err}
			}
			s.rejectBlock(&batch, perr)
			continue
		}
		batch.Hands = append(batch.Hands, *hand)
	}
	return batch
}

func (s *Splitter) rejectBlock(batch *Batch, perr *ParseError) {
	s.logger.Warn("Rejected hand", "hand", perr.HandID, "reason", perr.Err, "detail", perr.Detail)
	batch.Rejects = append(batch.Rejects, perr)
}

// HandIDs returns every hand identifier found in text, in order.
func HandIDs(text string) []int64 {
	matches := handIDRe.FindAllStringSubmatch(text, -1)
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func preview(block string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	if len(line) > 60 {
		line = line[:60] + "..."
	}
	return line
}
