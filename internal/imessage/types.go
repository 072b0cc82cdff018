// Package imessage reads raw rows from an iMessage chat.db archive.
// It maps the archive's message, chat, handle, and join tables into typed
// records for the importer; all interpretation (timestamps, sender names,
// text recovery) happens downstream.
package imessage

import "database/sql"

// RawChat is one row of the chat table.
type RawChat struct {
	ChatID      int64          // chat.ROWID
	DisplayName sql.NullString // chat.display_name (group name, often empty)
	Identifier  sql.NullString // chat.chat_identifier (phone/email for 1:1, "chat..." for groups)
	LastRawDate float64        // MAX(message.date) across the chat's messages
}

// RawMember is one chat membership edge from chat_handle_join.
type RawMember struct {
	ChatID int64  // chat_handle_join.chat_id
	Handle string // handle.id (raw phone or email)
}

// RawMessage is one row of the message table joined to its chat and sender.
type RawMessage struct {
	MessageID int64          // message.ROWID
	ChatID    int64          // chat_message_join.chat_id
	RawDate   float64        // message.date (encoding varies by archive version)
	IsFromMe  bool           // message.is_from_me
	Handle    sql.NullString // handle.id of the sender
	Text      sql.NullString // message.text (NULL on newer archives)
	Payload   []byte         // message.attributedBody (serialized body blob)
}
