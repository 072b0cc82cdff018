// Package importer normalizes a raw iMessage archive into the chatvault
// store. One run is a full rebuild: snapshot the source, drop and recreate
// the normalized tables, then write contacts, threads, members, and
// messages in batches.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chatvault/chatvault/internal/appletime"
	"github.com/chatvault/chatvault/internal/blobtext"
	"github.com/chatvault/chatvault/internal/handle"
	"github.com/chatvault/chatvault/internal/imessage"
	"github.com/chatvault/chatvault/internal/store"
	"github.com/chatvault/chatvault/internal/textutil"
)

// internalChatPrefix marks chat identifiers that are archive-internal
// placeholders ("chat83242...") rather than a participant handle.
const internalChatPrefix = "chat"

// maxTitleMembers caps how many member names a derived group title lists.
const maxTitleMembers = 5

// DefaultBatchSize is the per-commit message batch size.
const DefaultBatchSize = 5000

// Options configures an import run.
type Options struct {
	// ArchivePath is the source chat.db. Missing is a fatal precondition.
	ArchivePath string

	// ContactsPath is an optional vCard file. A malformed file degrades
	// titles and sender names but never aborts the run.
	ContactsPath string

	// WorkDir receives the private snapshot copy of the archive.
	WorkDir string

	// BatchSize is the number of messages per committed insert batch.
	BatchSize int

	// Location renders timestamps; nil means time.Local.
	Location *time.Location
}

// Summary holds statistics from a completed import run.
type Summary struct {
	Duration         time.Duration
	Contacts         int64
	Threads          int64
	Members          int64
	Messages         int64
	RecoveredTexts   int64 // texts pulled out of the binary body payload
	GarbledTexts     int64 // recoveries flagged by the garbage heuristic
	DuplicatesMerged int64
}

// Importer drives one normalization run against a store.
type Importer struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates an Importer writing to st.
func New(st *store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// Run performs the full import. The store is valid only after a nil return;
// a crash mid-run leaves a committed prefix of messages behind.
func (imp *Importer) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	// Snapshot before anything else: a missing archive must fail before
	// the first write, and reading a copy dodges torn reads from a live,
	// still-syncing source.
	snapPath, err := imessage.Snapshot(opts.ArchivePath, opts.WorkDir)
	if err != nil {
		return nil, err
	}

	archive, err := imessage.Open(snapPath)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	if err := imp.store.Reset(); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}

	contacts := imp.loadContacts(opts.ContactsPath)
	summary.Contacts = int64(len(contacts))

	nameFor := func(raw string) string {
		h := handle.Normalize(raw)
		if name, ok := contacts[h]; ok {
			return name
		}
		return h
	}

	membersByChat, err := imp.importMembers(archive, nameFor, summary)
	if err != nil {
		return nil, err
	}

	if err := imp.importThreads(archive, membersByChat, nameFor, opts.Location, summary); err != nil {
		return nil, err
	}

	if err := imp.importMessages(ctx, archive, nameFor, opts, summary); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	imp.logger.Info("import complete",
		"threads", summary.Threads,
		"messages", summary.Messages,
		"recovered", summary.RecoveredTexts,
		"garbled", summary.GarbledTexts,
		"duration", summary.Duration,
	)
	return summary, nil
}

// loadContacts parses the optional vCard file and writes the contact table.
// Failures degrade to an empty table; they never abort the run.
func (imp *Importer) loadContacts(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}
	contacts, err := handle.ParseVCardFile(path)
	if err != nil {
		imp.logger.Warn("contact list unusable, continuing without names", "path", path, "error", err)
		return map[string]string{}
	}

	rows := make([]store.Contact, 0, len(contacts))
	for h, name := range contacts {
		rows = append(rows, store.Contact{Handle: h, Name: name})
	}
	if err := imp.store.InsertContacts(rows); err != nil {
		imp.logger.Warn("contact insert failed, continuing without names", "error", err)
		return map[string]string{}
	}
	return contacts
}

// importMembers writes thread membership edges and returns the normalized
// handles of each chat in archive order, for title derivation.
func (imp *Importer) importMembers(archive *sql.DB, nameFor func(string) string, summary *Summary) (map[int64][]string, error) {
	raw, err := imessage.FetchMembers(archive)
	if err != nil {
		return nil, err
	}

	membersByChat := make(map[int64][]string)
	var rows []store.ThreadMember
	for _, m := range raw {
		h := handle.Normalize(m.Handle)
		if h == "" {
			continue
		}
		membersByChat[m.ChatID] = append(membersByChat[m.ChatID], h)
		rows = append(rows, store.ThreadMember{
			ChatID:       m.ChatID,
			MemberHandle: h,
			MemberName:   nameFor(h),
		})
	}
	if err := imp.store.InsertThreadMembers(rows); err != nil {
		return nil, err
	}
	summary.Members = int64(len(rows))
	return membersByChat, nil
}

// importThreads derives a title per chat and writes the thread table.
func (imp *Importer) importThreads(archive *sql.DB, membersByChat map[int64][]string, nameFor func(string) string, loc *time.Location, summary *Summary) error {
	chats, err := imessage.FetchChats(archive)
	if err != nil {
		return err
	}

	threads := make([]store.Thread, 0, len(chats))
	for _, c := range chats {
		threads = append(threads, store.Thread{
			ChatID:        c.ChatID,
			Title:         deriveTitle(c, membersByChat[c.ChatID], nameFor),
			LastMessageAt: appletime.FormatSortable(c.LastRawDate, loc),
		})
	}
	if err := imp.store.InsertThreads(threads); err != nil {
		return err
	}
	summary.Threads = int64(len(threads))
	return nil
}

// deriveTitle picks a thread title, in precedence order: the archive's
// explicit display name, a resolvable chat identifier, up to five member
// names, the raw identifier, and finally a synthetic chat_<id> token.
func deriveTitle(c imessage.RawChat, members []string, nameFor func(string) string) string {
	display := strings.TrimSpace(c.DisplayName.String)
	if display != "" {
		return display
	}

	ident := strings.TrimSpace(c.Identifier.String)
	if ident != "" && !strings.HasPrefix(ident, internalChatPrefix) {
		// 1:1 chats often store the other party's phone or email here.
		return nameFor(ident)
	}

	if len(members) > 0 {
		names := make([]string, 0, maxTitleMembers)
		for _, h := range members {
			names = append(names, nameFor(h))
			if len(names) == maxTitleMembers {
				break
			}
		}
		return strings.Join(names, ", ")
	}

	if ident != "" {
		return ident
	}
	return fmt.Sprintf("chat_%d", c.ChatID)
}

// importMessages streams archive messages into the store in batches.
// Rows are uniqued on (message_id, chat_id); sender and text resolution
// failures are per-row and never abort the run.
func (imp *Importer) importMessages(ctx context.Context, archive *sql.DB, nameFor func(string) string, opts Options, summary *Summary) error {
	batch := make([]store.Message, 0, opts.BatchSize)
	seen := make(map[[2]int64]bool)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := imp.store.InsertMessages(batch); err != nil {
			return err
		}
		summary.Messages += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	err := imessage.ForEachMessage(archive, func(m imessage.RawMessage) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := [2]int64{m.MessageID, m.ChatID}
		if seen[key] {
			summary.DuplicatesMerged++
			return nil
		}
		seen[key] = true

		batch = append(batch, store.Message{
			MessageID:  m.MessageID,
			ChatID:     m.ChatID,
			SentAt:     appletime.FormatSortable(m.RawDate, opts.Location),
			SenderName: resolveSender(m, nameFor),
			Text:       imp.resolveText(m, summary),
		})

		if len(batch) >= opts.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

// resolveSender maps a raw message to its display sender: the literal "ME"
// for outgoing messages, then contact name, then the normalized handle,
// then "UNKNOWN".
func resolveSender(m imessage.RawMessage, nameFor func(string) string) string {
	if m.IsFromMe {
		return "ME"
	}
	if m.Handle.Valid && strings.TrimSpace(m.Handle.String) != "" {
		return nameFor(m.Handle.String)
	}
	return "UNKNOWN"
}

// resolveText prefers the plain text column, falling back to blob recovery
// when the column is empty and a serialized body payload exists.
func (imp *Importer) resolveText(m imessage.RawMessage, summary *Summary) string {
	if m.Text.Valid && m.Text.String != "" {
		return textutil.EnsureUTF8(m.Text.String)
	}
	if len(m.Payload) == 0 {
		return ""
	}

	text := blobtext.Recover(m.Payload)
	if text == "" {
		return ""
	}
	summary.RecoveredTexts++
	if blobtext.LooksGarbled(text) {
		summary.GarbledTexts++
		imp.logger.Warn("recovered text looks garbled", "message_id", m.MessageID)
	}
	return text
}
