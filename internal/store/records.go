package store

// Contact maps a normalized handle to a display name. Contacts are written
// once during import and used only for name lookup afterwards.
type Contact struct {
	Handle string
	Name   string
}

// Thread is one conversation. Title derivation happens at import time;
// threads are replaced wholesale on re-import, never partially mutated.
type Thread struct {
	ChatID        int64
	Title         string
	LastMessageAt string
}

// ThreadMember is one participant edge of a thread. The member name is
// resolved at import time and frozen, so later contact edits do not
// relabel historical members.
type ThreadMember struct {
	ChatID       int64
	MemberHandle string
	MemberName   string
}

// Message is one normalized message. Ordered within a thread by
// (sent_at, message_id); immutable after import.
type Message struct {
	MessageID  int64  `json:"message_id"`
	ChatID     int64  `json:"chat_id"`
	SentAt     string `json:"sent_at"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
}
