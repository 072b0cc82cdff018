package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// insertInChunks executes a multi-value INSERT in chunks to stay within
// SQLite's parameter limit (999 by default). valuesPerRow is the number of
// parameters per VALUES tuple; valueBuilder produces placeholders and args
// for the [start, end) slice of rows.
func insertInChunks(tx *sql.Tx, totalRows, valuesPerRow int, queryPrefix string, valueBuilder func(start, end int) ([]string, []interface{})) error {
	const maxParams = 900
	chunkSize := maxParams / valuesPerRow
	if chunkSize < 1 {
		chunkSize = 1
	}

	for i := 0; i < totalRows; i += chunkSize {
		end := i + chunkSize
		if end > totalRows {
			end = totalRows
		}
		values, args := valueBuilder(i, end)
		query := queryPrefix + strings.Join(values, ",")
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

// InsertContacts writes contact rows. An existing handle keeps its first
// name (INSERT OR IGNORE), matching first-seen-wins contact parsing.
func (s *Store) InsertContacts(contacts []Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		err := insertInChunks(tx, len(contacts), 2,
			"INSERT OR IGNORE INTO contacts(handle, name) VALUES ",
			func(start, end int) ([]string, []interface{}) {
				values := make([]string, 0, end-start)
				args := make([]interface{}, 0, (end-start)*2)
				for _, c := range contacts[start:end] {
					values = append(values, "(?,?)")
					args = append(args, c.Handle, c.Name)
				}
				return values, args
			})
		if err != nil {
			return fmt.Errorf("insert contacts: %w", err)
		}
		return nil
	})
}

// InsertThreads writes thread rows, replacing identically-keyed rows.
func (s *Store) InsertThreads(threads []Thread) error {
	if len(threads) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		err := insertInChunks(tx, len(threads), 3,
			"INSERT OR REPLACE INTO threads(chat_id, title, last_message_at) VALUES ",
			func(start, end int) ([]string, []interface{}) {
				values := make([]string, 0, end-start)
				args := make([]interface{}, 0, (end-start)*3)
				for _, t := range threads[start:end] {
					values = append(values, "(?,?,?)")
					args = append(args, t.ChatID, t.Title, t.LastMessageAt)
				}
				return values, args
			})
		if err != nil {
			return fmt.Errorf("insert threads: %w", err)
		}
		return nil
	})
}

// InsertThreadMembers writes membership edges.
func (s *Store) InsertThreadMembers(members []ThreadMember) error {
	if len(members) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		err := insertInChunks(tx, len(members), 3,
			"INSERT INTO thread_members(chat_id, member_handle, member_name) VALUES ",
			func(start, end int) ([]string, []interface{}) {
				values := make([]string, 0, end-start)
				args := make([]interface{}, 0, (end-start)*3)
				for _, m := range members[start:end] {
					values = append(values, "(?,?,?)")
					args = append(args, m.ChatID, m.MemberHandle, m.MemberName)
				}
				return values, args
			})
		if err != nil {
			return fmt.Errorf("insert thread members: %w", err)
		}
		return nil
	})
}

// InsertMessages writes a batch of message rows inside one transaction.
// INSERT OR REPLACE on message_id means a re-import with richer text
// recovery updates already-imported rows instead of skipping them.
func (s *Store) InsertMessages(messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		err := insertInChunks(tx, len(messages), 5,
			"INSERT OR REPLACE INTO messages(message_id, chat_id, sent_at, sender_name, text) VALUES ",
			func(start, end int) ([]string, []interface{}) {
				values := make([]string, 0, end-start)
				args := make([]interface{}, 0, (end-start)*5)
				for _, m := range messages[start:end] {
					values = append(values, "(?,?,?,?,?)")
					args = append(args, m.MessageID, m.ChatID, m.SentAt, m.SenderName, m.Text)
				}
				return values, args
			})
		if err != nil {
			return fmt.Errorf("insert messages: %w", err)
		}
		return nil
	})
}

// LookupContact returns the display name for a normalized handle, or ok=false.
func (s *Store) LookupContact(handle string) (string, bool, error) {
	var name string
	err := s.db.QueryRow("SELECT name FROM contacts WHERE handle = ?", handle).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup contact: %w", err)
	}
	return name, true, nil
}

// AllContacts returns the full handle → name table.
func (s *Store) AllContacts() (map[string]string, error) {
	rows, err := s.db.Query("SELECT handle, name FROM contacts")
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	contacts := make(map[string]string)
	for rows.Next() {
		var handle, name string
		if err := rows.Scan(&handle, &name); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts[handle] = name
	}
	return contacts, rows.Err()
}
