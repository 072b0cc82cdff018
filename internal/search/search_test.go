package search_test

import (
	"testing"

	"github.com/rotisserie/eris"

	"github.com/chatvault/chatvault/internal/search"
	"github.com/chatvault/chatvault/internal/store"
	"github.com/chatvault/chatvault/internal/testutil"
)

// newEngine seeds one thread of ten messages; "pizza" appears in messages
// 3 and 9 (1-based ids 103 and 109).
func newEngine(t *testing.T) (*search.Engine, *store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)
	testutil.SeedThread(t, st, 1, "Dinner Plans", "2024-03-01 10:09:00")
	testutil.SeedMessages(t, st, 1, 101, "2024-03-01",
		"hey", "you around", "pizza tonight?", "cant", "tomorrow?",
		"sure", "what time", "seven", "pizza again then", "deal",
	)
	return search.New(st), st
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	eng, _ := newEngine(t)
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := eng.SearchExact(q, 2, 0); !eris.Is(err, search.ErrEmptyQuery) {
			t.Errorf("query %q: err = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestSearchExactWindows(t *testing.T) {
	eng, _ := newEngine(t)

	matches, err := eng.SearchExact("PIZZA", 2, 0)
	testutil.MustNoErr(t, err, "search")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	// Newest hit first.
	late, early := matches[0], matches[1]
	if late.MatchMessageID != 109 || early.MatchMessageID != 103 {
		t.Fatalf("hit order wrong: %d, %d", late.MatchMessageID, early.MatchMessageID)
	}

	// Interior hit: full window on both sides.
	if len(early.Window) != 5 || early.MatchIndex != 2 {
		t.Errorf("early window len=%d idx=%d, want 5/2", len(early.Window), early.MatchIndex)
	}
	if !early.HasMoreBefore || !early.HasMoreAfter {
		t.Errorf("early flags = %v/%v, want true/true", early.HasMoreBefore, early.HasMoreAfter)
	}
	if early.Window[early.MatchIndex].Text != "pizza tonight?" {
		t.Errorf("early match text = %q", early.Window[early.MatchIndex].Text)
	}

	// Hit one from the end: the window clips after, not before.
	if len(late.Window) != 4 || late.MatchIndex != 2 {
		t.Errorf("late window len=%d idx=%d, want 4/2", len(late.Window), late.MatchIndex)
	}
	if !late.HasMoreBefore || late.HasMoreAfter {
		t.Errorf("late flags = %v/%v, want true/false", late.HasMoreBefore, late.HasMoreAfter)
	}

	if late.Title != "Dinner Plans" || late.TotalMessages != 10 {
		t.Errorf("metadata wrong: title=%q total=%d", late.Title, late.TotalMessages)
	}
}

func TestSearchClipsAtThreadStart(t *testing.T) {
	eng, _ := newEngine(t)

	matches, err := eng.SearchExact("hey", 3, 0)
	testutil.MustNoErr(t, err, "search")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.MatchIndex != 0 || len(m.Window) != 4 {
		t.Errorf("window len=%d idx=%d, want 4/0", len(m.Window), m.MatchIndex)
	}
	if m.HasMoreBefore || !m.HasMoreAfter {
		t.Errorf("flags = %v/%v, want false/true", m.HasMoreBefore, m.HasMoreAfter)
	}
}

func TestSearchScopedToThread(t *testing.T) {
	eng, st := newEngine(t)
	testutil.SeedThread(t, st, 2, "Other", "2024-03-02 10:00:00")
	testutil.SeedMessages(t, st, 2, 201, "2024-03-02", "pizza elsewhere")

	all, err := eng.SearchExact("pizza", 1, 0)
	testutil.MustNoErr(t, err, "search all")
	if len(all) != 3 {
		t.Errorf("unscoped got %d matches, want 3", len(all))
	}

	scoped, err := eng.SearchExact("pizza", 1, 2)
	testutil.MustNoErr(t, err, "search scoped")
	if len(scoped) != 1 || scoped[0].ChatID != 2 {
		t.Errorf("scoped matches wrong: %+v", scoped)
	}
}

func TestSearchNoHits(t *testing.T) {
	eng, _ := newEngine(t)
	matches, err := eng.SearchExact("sushi", 2, 0)
	testutil.MustNoErr(t, err, "search")
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestExpandedContext(t *testing.T) {
	eng, _ := newEngine(t)

	m, err := eng.ExpandedContext(1, 103, 1, 4)
	testutil.MustNoErr(t, err, "expand")
	if len(m.Window) != 6 || m.MatchIndex != 1 {
		t.Fatalf("window len=%d idx=%d, want 6/1", len(m.Window), m.MatchIndex)
	}
	if m.Window[0].MessageID != 102 || m.Window[5].MessageID != 107 {
		t.Errorf("window bounds = %d..%d, want 102..107", m.Window[0].MessageID, m.Window[5].MessageID)
	}
}

func TestExpandedContextUnknownMessage(t *testing.T) {
	eng, _ := newEngine(t)

	m, err := eng.ExpandedContext(1, 999, 2, 2)
	testutil.MustNoErr(t, err, "expand unknown")
	if len(m.Window) != 0 {
		t.Errorf("unknown message should yield an empty window, got %d", len(m.Window))
	}
}
