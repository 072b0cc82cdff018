// Package search finds messages by substring and returns each hit inside a
// window of surrounding thread context, so a match is readable without a
// second round trip.
package search

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/chatvault/chatvault/internal/store"
)

// ErrEmptyQuery rejects blank or whitespace-only queries before any store
// access.
var ErrEmptyQuery = eris.New("search query is empty")

// DefaultContextSize is the number of messages shown on each side of a hit.
const DefaultContextSize = 2

// DefaultExpandBefore and DefaultExpandAfter size an expanded window when the
// caller does not say otherwise.
const (
	DefaultExpandBefore = 10
	DefaultExpandAfter  = 10
)

// Match is one search hit with its surrounding context window.
type Match struct {
	ChatID         int64           `json:"chat_id"`
	Title          string          `json:"title"`
	MatchMessageID int64           `json:"match_message_id"`
	Window         []store.Message `json:"window"`      // chronological slice around the hit
	MatchIndex     int             `json:"match_index"` // offset of the hit within Window
	HasMoreBefore  bool            `json:"has_more_before"`
	HasMoreAfter   bool            `json:"has_more_after"`
	TotalMessages  int             `json:"total_messages"`
}

// Engine runs substring searches against a normalized store.
type Engine struct {
	store *store.Store
}

// New creates an Engine reading from st.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// SearchExact finds messages whose text contains query, case-insensitively,
// newest hit first. Each hit carries up to contextSize messages on either
// side, clipped at the ends of the thread. chatID zero searches everywhere;
// nonzero restricts to one thread. A blank query is ErrEmptyQuery.
func (e *Engine) SearchExact(query string, contextSize int, chatID int64) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if contextSize < 0 {
		contextSize = DefaultContextSize
	}

	hits, err := e.store.SearchHits(query, chatID)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// Hits cluster in threads; load each thread's messages and title once.
	threads := make(map[int64][]store.Message)
	titles := make(map[int64]string)

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		msgs, ok := threads[hit.ChatID]
		if !ok {
			msgs, err = e.store.ThreadMessages(hit.ChatID)
			if err != nil {
				return nil, err
			}
			threads[hit.ChatID] = msgs
			titles[hit.ChatID] = e.threadTitle(hit.ChatID)
		}

		idx := indexOf(msgs, hit.MessageID)
		if idx < 0 {
			continue
		}
		lo := idx - contextSize
		if lo < 0 {
			lo = 0
		}
		hi := idx + contextSize + 1
		if hi > len(msgs) {
			hi = len(msgs)
		}

		matches = append(matches, Match{
			ChatID:         hit.ChatID,
			Title:          titles[hit.ChatID],
			MatchMessageID: hit.MessageID,
			Window:         msgs[lo:hi],
			MatchIndex:     idx - lo,
			HasMoreBefore:  lo > 0,
			HasMoreAfter:   hi < len(msgs),
			TotalMessages:  len(msgs),
		})
	}
	return matches, nil
}

// ExpandedContext re-windows one known message with asymmetric reach, for
// widening a previously returned hit. An unknown message yields an empty
// match, not an error.
func (e *Engine) ExpandedContext(chatID, messageID int64, before, after int) (Match, error) {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	msgs, err := e.store.ThreadMessages(chatID)
	if err != nil {
		return Match{}, err
	}

	idx := indexOf(msgs, messageID)
	if idx < 0 {
		return Match{ChatID: chatID, MatchMessageID: messageID}, nil
	}
	lo := idx - before
	if lo < 0 {
		lo = 0
	}
	hi := idx + after + 1
	if hi > len(msgs) {
		hi = len(msgs)
	}

	return Match{
		ChatID:         chatID,
		Title:          e.threadTitle(chatID),
		MatchMessageID: messageID,
		Window:         msgs[lo:hi],
		MatchIndex:     idx - lo,
		HasMoreBefore:  lo > 0,
		HasMoreAfter:   hi < len(msgs),
		TotalMessages:  len(msgs),
	}, nil
}

func (e *Engine) threadTitle(chatID int64) string {
	th, err := e.store.GetThread(chatID)
	if err != nil || th == nil {
		return ""
	}
	return th.Title
}

func indexOf(msgs []store.Message, messageID int64) int {
	for i, m := range msgs {
		if m.MessageID == messageID {
			return i
		}
	}
	return -1
}
