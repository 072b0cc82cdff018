package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// ArchiveChat seeds one chat row in a synthetic archive.
type ArchiveChat struct {
	ChatID      int64
	DisplayName string
	Identifier  string
}

// ArchiveMessage seeds one message row in a synthetic archive.
type ArchiveMessage struct {
	MessageID int64
	ChatID    int64
	RawDate   int64 // stored as-is; encode per the archive version under test
	IsFromMe  bool
	Handle    string // empty means no handle row (sender unknown)
	Text      string
	Payload   []byte
}

// NewTestArchive builds a minimal synthetic chat.db on disk with the given
// chats, members (chat id → raw handles), and messages, and returns its path.
func NewTestArchive(t *testing.T, chats []ArchiveChat, members map[int64][]string, messages []ArchiveMessage) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite3", path)
	MustNoErr(t, err, "open test archive")
	defer db.Close()

	schema := `
		CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT);
		CREATE TABLE chat (ROWID INTEGER PRIMARY KEY, display_name TEXT, chat_identifier TEXT);
		CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY, text TEXT, attributedBody BLOB,
			handle_id INTEGER, is_from_me INTEGER, date INTEGER
		);
		CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
		CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);
	`
	_, err = db.Exec(schema)
	MustNoErr(t, err, "create archive schema")

	// Handles are shared between members and message senders.
	handleIDs := make(map[string]int64)
	ensureHandle := func(raw string) int64 {
		if id, ok := handleIDs[raw]; ok {
			return id
		}
		id := int64(len(handleIDs) + 1)
		_, err := db.Exec("INSERT INTO handle(ROWID, id) VALUES (?, ?)", id, raw)
		MustNoErr(t, err, "insert handle")
		handleIDs[raw] = id
		return id
	}

	for _, c := range chats {
		_, err := db.Exec(
			"INSERT INTO chat(ROWID, display_name, chat_identifier) VALUES (?, ?, ?)",
			c.ChatID, c.DisplayName, c.Identifier,
		)
		MustNoErr(t, err, "insert chat")
	}

	for chatID, handles := range members {
		for _, h := range handles {
			_, err := db.Exec(
				"INSERT INTO chat_handle_join(chat_id, handle_id) VALUES (?, ?)",
				chatID, ensureHandle(h),
			)
			MustNoErr(t, err, "insert member")
		}
	}

	for _, m := range messages {
		var handleID interface{}
		if m.Handle != "" {
			handleID = ensureHandle(m.Handle)
		}
		fromMe := 0
		if m.IsFromMe {
			fromMe = 1
		}
		var text interface{}
		if m.Text != "" {
			text = m.Text
		}
		_, err := db.Exec(
			"INSERT INTO message(ROWID, text, attributedBody, handle_id, is_from_me, date) VALUES (?, ?, ?, ?, ?, ?)",
			m.MessageID, text, m.Payload, handleID, fromMe, m.RawDate,
		)
		MustNoErr(t, err, "insert message")
		_, err = db.Exec(
			"INSERT INTO chat_message_join(chat_id, message_id) VALUES (?, ?)",
			m.ChatID, m.MessageID,
		)
		MustNoErr(t, err, "insert chat_message_join")
	}

	return path
}
