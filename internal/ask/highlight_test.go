package ask_test

import (
	"testing"

	"github.com/chatvault/chatvault/internal/ask"
	"github.com/chatvault/chatvault/internal/store"
)

func usedMessages(texts ...string) []store.Message {
	msgs := make([]store.Message, len(texts))
	for i, text := range texts {
		msgs[i] = store.Message{
			MessageID:  int64(100 + i),
			ChatID:     1,
			SentAt:     "2024-03-01 10:00:00",
			SenderName: "ME",
			Text:       text,
		}
	}
	return msgs
}

func TestFindHighlightContainment(t *testing.T) {
	used := usedMessages("no", "The deadline is Friday", "ok")

	h := ask.FindHighlight(used, "The deadline is Friday", 1, "Work")
	if h == nil {
		t.Fatal("no highlight for an exact quote")
	}
	if len(h.Messages) != 3 {
		t.Fatalf("window len = %d, want 3", len(h.Messages))
	}
	for i, m := range h.Messages {
		if m.IsMatch != (i == 1) {
			t.Errorf("message %d is_match = %v", i, m.IsMatch)
		}
	}
	if h.ChatID != 1 || h.Title != "Work" {
		t.Errorf("metadata wrong: %+v", h)
	}
}

func TestFindHighlightPrefersLongestMatch(t *testing.T) {
	used := usedMessages("Friday", "the deadline is Friday at noon", "Friday")

	h := ask.FindHighlight(used, `It says "the deadline is Friday at noon" and also "Friday"`, 1, "Work")
	if h == nil {
		t.Fatal("no highlight")
	}
	for i, m := range h.Messages {
		if m.IsMatch && m.Text != "the deadline is Friday at noon" {
			t.Errorf("matched %q at window index %d, want the longest quote", m.Text, i)
		}
	}
}

func TestFindHighlightNegativeAnswers(t *testing.T) {
	used := usedMessages("none", "no messages here")
	for _, answer := range []string{"none", "  NONE  ", "No Messages", "no message.", ""} {
		if h := ask.FindHighlight(used, answer, 1, "T"); h != nil {
			t.Errorf("answer %q produced a highlight", answer)
		}
	}
}

func TestFindHighlightWordOverlapFallback(t *testing.T) {
	used := usedMessages("hm", "we should leave early tomorrow", "yeah")

	h := ask.FindHighlight(used, "They planned to leave in the morning", 1, "Trip")
	if h == nil {
		t.Fatal("fallback found nothing despite shared word")
	}
	var match string
	for _, m := range h.Messages {
		if m.IsMatch {
			match = m.Text
		}
	}
	if match != "we should leave early tomorrow" {
		t.Errorf("fallback matched %q", match)
	}
}

func TestFindHighlightWindowClipsAtEdges(t *testing.T) {
	used := usedMessages("the answer is here", "later", "more", "even more")

	h := ask.FindHighlight(used, "the answer is here", 1, "T")
	if h == nil {
		t.Fatal("no highlight")
	}
	// Match at index 0: nothing before, two after.
	if len(h.Messages) != 3 || !h.Messages[0].IsMatch {
		t.Errorf("window = %+v, want clipped 3 with match first", h.Messages)
	}
}

func TestFindHighlightNoMatch(t *testing.T) {
	if h := ask.FindHighlight(nil, "anything", 1, "T"); h != nil {
		t.Error("empty message list produced a highlight")
	}
	used := usedMessages("alpha beta", "gamma delta")
	if h := ask.FindHighlight(used, "zeta", 1, "T"); h != nil {
		t.Error("disjoint answer produced a highlight")
	}
}
