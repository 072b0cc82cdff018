package ask

import (
	"strings"

	"github.com/chatvault/chatvault/internal/store"
)

// highlightReach is how many messages flank the match on each side.
const highlightReach = 2

// minFallbackTextLen is the shortest message the word-overlap fallback will
// point at.
const minFallbackTextLen = 5

// negativeAnswers are model replies that mean "nothing here"; they never
// produce a highlight.
var negativeAnswers = map[string]bool{
	"none":        true,
	"no messages": true,
	"no message.": true,
}

// HighlightMessage is one message inside a highlight window.
type HighlightMessage struct {
	SentAt     string `json:"sent_at"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	IsMatch    bool   `json:"is_match"`
}

// Highlight points at the transcript message an answer quoted, with two
// messages of context on each side.
type Highlight struct {
	ChatID   int64              `json:"chat_id"`
	Title    string             `json:"title"`
	Messages []HighlightMessage `json:"messages"`
}

// FindHighlight locates the message an answer refers to and windows it.
// Containment wins: the longest message text contained in the answer, or
// containing it, breaking ties toward the earliest message. Failing that,
// the first message of five or more characters sharing any word with the
// answer. Returns nil when nothing matches or the answer is a negative.
func FindHighlight(used []store.Message, answer string, chatID int64, title string) *Highlight {
	trimmed := strings.TrimSpace(answer)
	if len(used) == 0 || trimmed == "" || negativeAnswers[strings.ToLower(trimmed)] {
		return nil
	}
	answerLower := strings.ToLower(answer)

	best := -1
	bestLen := 0
	for i, m := range used {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		textLower := strings.ToLower(text)
		if strings.Contains(answerLower, textLower) || strings.Contains(textLower, answerLower) {
			if len(text) > bestLen {
				bestLen = len(text)
				best = i
			}
		}
	}

	if best < 0 {
		answerWords := wordSet(answerLower)
		for i, m := range used {
			text := strings.TrimSpace(m.Text)
			if len(text) < minFallbackTextLen {
				continue
			}
			if overlaps(wordSet(strings.ToLower(text)), answerWords) {
				best = i
				break
			}
		}
	}
	if best < 0 {
		return nil
	}

	lo := best - highlightReach
	if lo < 0 {
		lo = 0
	}
	hi := best + highlightReach + 1
	if hi > len(used) {
		hi = len(used)
	}

	window := make([]HighlightMessage, 0, hi-lo)
	for j := lo; j < hi; j++ {
		window = append(window, HighlightMessage{
			SentAt:     used[j].SentAt,
			SenderName: used[j].SenderName,
			Text:       used[j].Text,
			IsMatch:    j == best,
		})
	}
	return &Highlight{ChatID: chatID, Title: title, Messages: window}
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func overlaps(a, b map[string]bool) bool {
	for w := range a {
		if b[w] {
			return true
		}
	}
	return false
}
