// Package ask answers free-text questions about one thread on one day:
// assemble a char-budgeted transcript, hand it to the answering model, locate
// the quoted message, and cache the finished result.
package ask

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chatvault/chatvault/internal/store"
)

// DefaultMaxContextChars bounds the assembled transcript.
const DefaultMaxContextChars = 6000

// ErrBadPeriod rejects a malformed or multi-day period before any store
// access. The assembled context covers exactly one calendar day.
var ErrBadPeriod = eris.New("period must be a single calendar day")

// periodFormat is the wire form of period bounds.
const periodFormat = "2006-01-02"

// lineSeparatorLen is what one more line costs beyond its own length.
const lineSeparatorLen = 2

// ContextBundle is an assembled transcript plus the messages that made it in,
// in transcript order.
type ContextBundle struct {
	Transcript   string
	ThreadTitle  string
	MessagesUsed []store.Message
}

// validatePeriod checks both bounds parse as dates and name the same day.
func validatePeriod(start, end string) error {
	s, err := time.Parse(periodFormat, strings.TrimSpace(start))
	if err != nil {
		return eris.Wrapf(ErrBadPeriod, "bad start %q", start)
	}
	e, err := time.Parse(periodFormat, strings.TrimSpace(end))
	if err != nil {
		return eris.Wrapf(ErrBadPeriod, "bad end %q", end)
	}
	if e.Before(s) {
		return eris.Wrap(ErrBadPeriod, "start is after end")
	}
	if !e.Equal(s) {
		return eris.Wrap(ErrBadPeriod, "range spans more than one day")
	}
	return nil
}

// Assembler builds transcripts from a normalized store.
type Assembler struct {
	store *store.Store
}

// NewAssembler creates an Assembler reading from st.
func NewAssembler(st *store.Store) *Assembler {
	return &Assembler{store: st}
}

// Build assembles up to maxChars of "sender: text" lines for one thread and
// one calendar day. Lines are added chronologically until the next would
// blow the budget; the header is free. Zero fitting lines means no usable
// context: the transcript and message list come back empty, whatever was in
// range. An unknown chat also yields an empty bundle.
func (a *Assembler) Build(chatID int64, start, end string, maxChars int) (*ContextBundle, error) {
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	th, err := a.store.GetThread(chatID)
	if err != nil {
		return nil, err
	}
	if th == nil {
		return &ContextBundle{}, nil
	}

	msgs, err := a.store.GetMessagesInRange(chatID, strings.TrimSpace(start), strings.TrimSpace(end))
	if err != nil {
		return nil, err
	}

	lines := []string{fmt.Sprintf("## Thread: %s (%s to %s)", th.Title, start, end)}
	var used []store.Message
	total := 0
	for _, m := range msgs {
		line := m.SenderName + ": " + m.Text
		if total+len(line)+lineSeparatorLen > maxChars {
			break
		}
		lines = append(lines, line)
		used = append(used, m)
		total += len(line) + lineSeparatorLen
	}
	if len(used) == 0 {
		return &ContextBundle{ThreadTitle: th.Title}, nil
	}

	return &ContextBundle{
		Transcript:   strings.Join(lines, "\n"),
		ThreadTitle:  th.Title,
		MessagesUsed: used,
	}, nil
}
