package imessage

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens a chat.db archive read-only.
// The file: URI form safely handles paths containing '?' or '#'.
func Open(path string) (*sql.DB, error) {
	dsn := (&url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     path,
		RawQuery: "mode=ro&_busy_timeout=5000",
	}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := verifyArchive(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// verifyArchive checks that the expected iMessage tables exist.
func verifyArchive(db *sql.DB) error {
	for _, table := range []string{"message", "chat", "handle", "chat_message_join", "chat_handle_join"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("not an iMessage archive: missing table %q", table)
		}
		if err != nil {
			return fmt.Errorf("verify archive: %w", err)
		}
	}
	return nil
}

// FetchChats returns every chat, ordered by most recent activity first.
// Chats with no messages report a LastRawDate of zero. LastRawDate is left
// in the archive's raw encoding for the caller to decode.
func FetchChats(db *sql.DB) ([]RawChat, error) {
	rows, err := db.Query(`
		WITH latest AS (
			SELECT cmj.chat_id, MAX(m.date) AS max_date
			FROM chat_message_join cmj
			JOIN message m ON m.ROWID = cmj.message_id
			GROUP BY cmj.chat_id
		)
		SELECT c.ROWID, c.display_name, c.chat_identifier,
			CAST(COALESCE(l.max_date, 0) AS REAL)
		FROM chat c
		LEFT JOIN latest l ON l.chat_id = c.ROWID
		ORDER BY COALESCE(l.max_date, 0) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch chats: %w", err)
	}
	defer rows.Close()

	var chats []RawChat
	for rows.Next() {
		var c RawChat
		if err := rows.Scan(&c.ChatID, &c.DisplayName, &c.Identifier, &c.LastRawDate); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// FetchMembers returns every chat membership edge, joined to the raw handle.
func FetchMembers(db *sql.DB) ([]RawMember, error) {
	rows, err := db.Query(`
		SELECT chj.chat_id, h.id
		FROM chat_handle_join chj
		JOIN handle h ON h.ROWID = chj.handle_id
		ORDER BY chj.chat_id
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer rows.Close()

	var members []RawMember
	for rows.Next() {
		var m RawMember
		if err := rows.Scan(&m.ChatID, &m.Handle); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ForEachMessage streams every message row through fn in ROWID order.
// A message can join to multiple chats, so the same ROWID may appear once
// per chat; the importer de-duplicates on (message_id, chat_id). Insert
// batching happens on the write side, so the read is one cursor pass.
func ForEachMessage(db *sql.DB, fn func(RawMessage) error) error {
	rows, err := db.Query(`
		SELECT DISTINCT
			m.ROWID,
			cmj.chat_id,
			CAST(COALESCE(m.date, 0) AS REAL),
			COALESCE(m.is_from_me, 0),
			h.id,
			m.text,
			m.attributedBody
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		LEFT JOIN handle h ON h.ROWID = m.handle_id
		ORDER BY m.ROWID ASC
	`)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m RawMessage
		var fromMe int
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.RawDate, &fromMe, &m.Handle, &m.Text, &m.Payload); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		m.IsFromMe = fromMe == 1
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}
