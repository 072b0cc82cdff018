package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/chatvault/chatvault/internal/store"
)

// NewTestStore creates a temporary database for testing.
// The database is automatically cleaned up when the test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return st
}

// SeedThread inserts a thread row with the given id and title.
func SeedThread(t *testing.T, st *store.Store, chatID int64, title, lastMessageAt string) {
	t.Helper()
	err := st.InsertThreads([]store.Thread{
		{ChatID: chatID, Title: title, LastMessageAt: lastMessageAt},
	})
	MustNoErr(t, err, "seed thread")
}

// SeedMessages inserts sequential messages into a thread, one minute apart
// starting at baseDay 10:00:00. texts[i] becomes message (startID + i).
func SeedMessages(t *testing.T, st *store.Store, chatID, startID int64, baseDay string, texts ...string) []store.Message {
	t.Helper()
	msgs := make([]store.Message, len(texts))
	for i, text := range texts {
		msgs[i] = store.Message{
			MessageID:  startID + int64(i),
			ChatID:     chatID,
			SentAt:     fmt.Sprintf("%s 10:%02d:00", baseDay, i),
			SenderName: "ME",
			Text:       text,
		}
	}
	MustNoErr(t, st.InsertMessages(msgs), "seed messages")
	return msgs
}
