package handhistory

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // hand histories are stamped in a fixed named zone
)

// DefaultTimezone is the zone 888poker writes hand-history timestamps in.
const DefaultTimezone = "Asia/Tbilisi"

const (
	timestampLayout = "02 01 2006 15:04:05"
	flopMarker      = "** Dealing flop **"
	omahaMarker     = "Pot Limit Omaha"
	holdemMarker    = "No Limit Holdem"
	deadBlindMarker = "posts dead blind"
)

var (
	seatRe      = regexp.MustCompile(`(?m)^\s*Seat (\d{1,2}): ?(\S*) \(`)
	dealtRe     = regexp.MustCompile(`Dealt to (\S+) \[ (.+?) \]`)
	showsRe     = regexp.MustCompile(`(\S+) shows \[ (.+?) \]`)
	limitRe     = regexp.MustCompile(`\$(\d[\d,]*(?:\.\d+)?)/\$(\d[\d,]*(?:\.\d+)?)`)
	timestampRe = regexp.MustCompile(`\d\d \d\d \d{4} \d\d:\d\d:\d\d`)
)

type verb int

const (
	verbNone verb = iota
	verbBet
	verbCollect
)

// Checked in this order; the first verb found on a line decides its kind.
var actionVerbs = []struct {
	token string
	kind  verb
}{
	{" posts ", verbBet},
	{" calls ", verbBet},
	{" bets ", verbBet},
	{" raises ", verbBet},
	{" collected ", verbCollect},
}

// Options configures a Parser.
type Options struct {
	// Location the embedded timestamps are written in. Defaults to
	// DefaultTimezone.
	Location *time.Location
}

// Parser converts single hand text blocks into HandRecords. It keeps no
// state between calls and is safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser for the given options.
func NewParser(opts Options) *Parser {
	loc := opts.Location
	if loc == nil {
		loc = DefaultLocation()
	}
	return &Parser{loc: loc}
}

// DefaultLocation loads DefaultTimezone, falling back to its fixed UTC+4
// offset if the zone database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("+04", 4*60*60)
	}
	return loc
}

// handState is the scratch space for one Parse call.
type handState struct {
	seats     []seat
	bets      map[string]int64
	antes     map[string]int64
	collected map[string]int64
	cards     map[string]string
}

type seat struct {
	number int
	name   string
}

// Parse reconstructs the money flow of one hand. Hole cards are read in two
// passes, "Dealt to" first and "shows" second, so cards revealed at showdown
// replace dealt cards for the same player.
func (p *Parser) Parse(id int64, text string) (*HandRecord, error) {
	if id <= 0 {
		return nil, reject(id, ErrInvalidID, "")
	}
	game, ok := detectGame(text)
	if !ok {
		return nil, reject(id, ErrUnsupportedGame, "no variant marker")
	}

	st := &handState{
		bets:      make(map[string]int64),
		antes:     make(map[string]int64),
		collected: make(map[string]int64),
		cards:     make(map[string]string),
	}

	for _, m := range seatRe.FindAllStringSubmatch(text, -1) {
		if m[2] == "" {
			return nil, reject(id, ErrMissingNames, "seat %s has no name", m[1])
		}
		if _, dup := st.bets[m[2]]; dup {
			return nil, reject(id, ErrDuplicateSeat, "%q at seat %s", m[2], m[1])
		}
		st.seats = append(st.seats, seat{number: atoi(m[1]), name: m[2]})
		st.bets[m[2]] = 0
	}
	if len(st.seats) == 0 {
		return nil, reject(id, ErrMissingNames, "no seated players")
	}

	for _, m := range dealtRe.FindAllStringSubmatch(text, -1) {
		st.cards[m[1]] = normalizeCards(m[2])
	}
	for _, m := range showsRe.FindAllStringSubmatch(text, -1) {
		st.cards[m[1]] = normalizeCards(m[2])
	}

	stamp := timestampRe.FindString(text)
	if stamp == "" {
		return nil, reject(id, ErrMissingTimestamp, "")
	}
	local, err := time.ParseInLocation(timestampLayout, stamp, p.loc)
	if err != nil {
		return nil, reject(id, ErrMissingTimestamp, "%q: %v", stamp, err)
	}

	if perr := st.scanActions(id, text); perr != nil {
		return nil, perr
	}

	var won int64
	for _, amount := range st.collected {
		won += amount
	}
	if won == 0 {
		return nil, reject(id, ErrIncompleteHand, "nothing collected")
	}

	st.returnUncalledBet()

	var bets, antes int64
	for _, amount := range st.bets {
		bets += amount
	}
	for _, amount := range st.antes {
		antes += amount
	}
	pot := bets + antes
	rake := pot - won
	flop := strings.Contains(text, flopMarker)

	if rake < 0 {
		return nil, reject(id, ErrNegativeRake, "rake=%d pot=%d won=%d", rake, pot, won)
	}
	if rake > 0 && !flop {
		return nil, reject(id, ErrRakeWithoutFlop, "rake=%d pot=%d won=%d", rake, pot, won)
	}

	hand := &HandRecord{
		ID:           id,
		PlayedAt:     local.UTC(),
		RawText:      text,
		Game:         game,
		Limit:        detectLimit(text),
		PlayerCount:  len(st.seats),
		Pot:          pot,
		Rake:         rake,
		AnteTotal:    antes,
		Flop:         flop,
		Participants: make([]Participant, 0, len(st.seats)),
	}
	for _, s := range st.seats {
		hand.Participants = append(hand.Participants, Participant{
			Seat:        s.number,
			Name:        s.name,
			Cards:       st.cards[s.name],
			Contributed: st.bets[s.name] + st.antes[s.name],
			Ante:        st.antes[s.name],
			Collected:   st.collected[s.name],
		})
	}
	// Storage refuses records that fail Validate.
	if err := hand.Validate(); err != nil {
		return nil, reject(id, ErrUnbalancedHand, "%v", err)
	}
	return hand, nil
}

// scanActions walks the hand line by line accumulating bets, dead blinds
// and winnings per player.
func (st *handState) scanActions(id int64, text string) *ParseError {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		actor, kind, rest := splitAction(line)
		if kind == verbNone {
			continue
		}
		if actor == "" {
			return reject(id, ErrMissingNames, "%q", line)
		}
		if _, seated := st.bets[actor]; !seated {
			return reject(id, ErrUnknownPlayer, "%q", actor)
		}

		switch kind {
		case verbBet:
			if strings.Contains(line, deadBlindMarker) {
				parts := strings.Split(rest, "+")
				if len(parts) < 2 {
					return reject(id, ErrUnparsableAmount, "dead blind %q", line)
				}
				ante, err := ParseAmount(parts[len(parts)-2])
				if err != nil {
					return reject(id, ErrUnparsableAmount, "%q", line)
				}
				st.antes[actor] = ante
				rest = parts[len(parts)-1]
			}
			bet, err := ParseAmount(rest)
			if err != nil {
				return reject(id, ErrUnparsableAmount, "%q", line)
			}
			st.bets[actor] += bet
		case verbCollect:
			amount, err := ParseAmount(rest)
			if err != nil {
				return reject(id, ErrUnparsableAmount, "%q", line)
			}
			st.collected[actor] += amount
		}
	}
	return nil
}

// returnUncalledBet lowers the single largest bettor to the runner-up when
// nobody matched the difference.
func (st *handState) returnUncalledBet() {
	if len(st.bets) < 2 {
		return
	}
	totals := make([]int64, 0, len(st.bets))
	for _, amount := range st.bets {
		totals = append(totals, amount)
	}
	slices.Sort(totals)
	top, second := totals[len(totals)-1], totals[len(totals)-2]
	if top == second {
		return
	}
	for name, amount := range st.bets {
		if amount == top {
			st.bets[name] = second
			return
		}
	}
}

// splitAction returns the acting player, the verb kind and the text after
// the verb. Lines with no betting verb return verbNone.
func splitAction(line string) (string, verb, string) {
	for _, v := range actionVerbs {
		idx := strings.Index(line, v.token)
		if idx < 0 {
			continue
		}
		fields := strings.Fields(line[:idx])
		if len(fields) == 0 {
			return "", v.kind, line[idx+len(v.token):]
		}
		return fields[0], v.kind, line[idx+len(v.token):]
	}
	return "", verbNone, ""
}

func detectGame(text string) (Game, bool) {
	switch {
	case strings.Contains(text, omahaMarker):
		return PLO4, true
	case strings.Contains(text, holdemMarker):
		return NLHE, true
	default:
		return "", false
	}
}

// detectLimit returns the big blind in cents. Stakes that are missing,
// unparsable or disagree with each other yield 0.
func detectLimit(text string) int64 {
	var limit int64
	for i, m := range limitRe.FindAllStringSubmatch(text, -1) {
		bb, err := ParseAmount(m[2])
		if err != nil {
			return 0
		}
		if i > 0 && bb != limit {
			return 0
		}
		limit = bb
	}
	return limit
}

func normalizeCards(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, ",", " ")), " ")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
