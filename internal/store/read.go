package store

import (
	"database/sql"
	"fmt"
)

// ListThreads returns threads ordered by most recent activity first.
func (s *Store) ListThreads(limit int) ([]Thread, error) {
	rows, err := s.db.Query(`
		SELECT chat_id, COALESCE(title, ''), COALESCE(last_message_at, '')
		FROM threads
		ORDER BY last_message_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ChatID, &t.Title, &t.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// GetThread returns one thread, or nil if the chat id is unknown.
func (s *Store) GetThread(chatID int64) (*Thread, error) {
	var t Thread
	err := s.db.QueryRow(`
		SELECT chat_id, COALESCE(title, ''), COALESCE(last_message_at, '')
		FROM threads WHERE chat_id = ?
	`, chatID).Scan(&t.ChatID, &t.Title, &t.LastMessageAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return &t, nil
}

// GetMessages returns the newest messages of a thread, most recent first.
func (s *Store) GetMessages(chatID int64, limit int) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT message_id, chat_id, sent_at, sender_name, COALESCE(text, '')
		FROM messages
		WHERE chat_id = ?
		ORDER BY sent_at DESC, message_id DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return scanMessages(rows)
}

// GetMessagesInRange returns a thread's messages within an inclusive
// calendar-date range, in chronological order. start and end are
// "YYYY-MM-DD" strings; the range is widened to whole days before the
// comparison against the sortable sent_at column.
func (s *Store) GetMessagesInRange(chatID int64, start, end string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT message_id, chat_id, sent_at, sender_name, COALESCE(text, '')
		FROM messages
		WHERE chat_id = ? AND sent_at >= ? AND sent_at <= ?
		ORDER BY sent_at ASC, message_id ASC
	`, chatID, start+" 00:00:00", end+" 23:59:59")
	if err != nil {
		return nil, fmt.Errorf("get messages in range: %w", err)
	}
	return scanMessages(rows)
}

// ThreadMessages returns the complete chronological message list of a thread.
func (s *Store) ThreadMessages(chatID int64) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT message_id, chat_id, sent_at, sender_name, COALESCE(text, '')
		FROM messages
		WHERE chat_id = ?
		ORDER BY sent_at ASC, message_id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("thread messages: %w", err)
	}
	return scanMessages(rows)
}

// SearchHits returns messages whose text contains the query,
// case-insensitively, ordered by sent_at descending. chatID restricts the
// candidate set when > 0.
func (s *Store) SearchHits(query string, chatID int64) ([]Message, error) {
	q := `
		SELECT message_id, chat_id, sent_at, sender_name, COALESCE(text, '')
		FROM messages
		WHERE instr(lower(text), lower(?)) > 0
	`
	args := []interface{}{query}
	if chatID > 0 {
		q += " AND chat_id = ?"
		args = append(args, chatID)
	}
	q += " ORDER BY sent_at DESC, message_id DESC"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search hits: %w", err)
	}
	return scanMessages(rows)
}

// ThreadMembers returns the membership edges of a thread.
func (s *Store) ThreadMembers(chatID int64) ([]ThreadMember, error) {
	rows, err := s.db.Query(`
		SELECT chat_id, member_handle, COALESCE(member_name, '')
		FROM thread_members
		WHERE chat_id = ?
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("thread members: %w", err)
	}
	defer rows.Close()

	var members []ThreadMember
	for rows.Next() {
		var m ThreadMember
		if err := rows.Scan(&m.ChatID, &m.MemberHandle, &m.MemberName); err != nil {
			return nil, fmt.Errorf("scan thread member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	defer rows.Close()
	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.SentAt, &m.SenderName, &m.Text); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
