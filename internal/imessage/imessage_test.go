package imessage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/chatvault/chatvault/internal/imessage"
	"github.com/chatvault/chatvault/internal/testutil"
)

func newArchive(t *testing.T) string {
	t.Helper()
	return testutil.NewTestArchive(t,
		[]testutil.ArchiveChat{
			{ChatID: 1, DisplayName: "", Identifier: "+15551234567"},
			{ChatID: 2, DisplayName: "Ski Trip", Identifier: "chat83242"},
		},
		map[int64][]string{
			1: {"+15551234567"},
			2: {"+15551234567", "555-987-6543"},
		},
		[]testutil.ArchiveMessage{
			{MessageID: 10, ChatID: 1, RawDate: 100, IsFromMe: true, Text: "hi"},
			{MessageID: 11, ChatID: 1, RawDate: 200, Handle: "+15551234567", Text: "hello"},
			{MessageID: 12, ChatID: 2, RawDate: 300, Handle: "555-987-6543", Text: "snow?"},
		},
	)
}

func TestOpenRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	if err := os.WriteFile(path, []byte("not sqlite"), 0644); err != nil {
		t.Fatal(err)
	}
	if db, err := imessage.Open(path); err == nil {
		db.Close()
		t.Fatal("Open accepted a non-archive file")
	}
}

func TestFetchChatsAndMembers(t *testing.T) {
	db, err := imessage.Open(newArchive(t))
	testutil.MustNoErr(t, err, "open archive")
	defer db.Close()

	chats, err := imessage.FetchChats(db)
	testutil.MustNoErr(t, err, "fetch chats")
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	// Ordered by last activity descending: the ski trip chat is newest.
	if chats[0].ChatID != 2 || chats[0].DisplayName.String != "Ski Trip" {
		t.Errorf("chat order/fields wrong: %+v", chats[0])
	}
	if chats[0].LastRawDate != 300 || chats[1].LastRawDate != 200 {
		t.Errorf("last raw dates wrong: %v, %v", chats[0].LastRawDate, chats[1].LastRawDate)
	}

	members, err := imessage.FetchMembers(db)
	testutil.MustNoErr(t, err, "fetch members")
	if len(members) != 3 {
		t.Errorf("got %d member edges, want 3: %+v", len(members), members)
	}
}

func TestForEachMessage(t *testing.T) {
	db, err := imessage.Open(newArchive(t))
	testutil.MustNoErr(t, err, "open archive")
	defer db.Close()

	var got []imessage.RawMessage
	err = imessage.ForEachMessage(db, func(m imessage.RawMessage) error {
		got = append(got, m)
		return nil
	})
	testutil.MustNoErr(t, err, "for each message")

	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	if got[0].MessageID != 10 || !got[0].IsFromMe || got[0].Handle.Valid {
		t.Errorf("from-me row wrong: %+v", got[0])
	}
	if got[1].Handle.String != "+15551234567" || got[1].Text.String != "hello" {
		t.Errorf("sender row wrong: %+v", got[1])
	}
}

func TestSnapshot(t *testing.T) {
	src := newArchive(t)
	// Fake WAL side files next to the archive.
	testutil.MustNoErr(t, os.WriteFile(src+"-wal", []byte("wal"), 0644), "write wal")
	testutil.MustNoErr(t, os.WriteFile(src+"-shm", []byte("shm"), 0644), "write shm")

	workDir := filepath.Join(t.TempDir(), "work")
	copied, err := imessage.Snapshot(src, workDir)
	testutil.MustNoErr(t, err, "snapshot")

	for _, p := range []string{copied, copied + "-wal", copied + "-shm"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("snapshot missing %s: %v", p, err)
		}
	}

	// The copy must open and read like the original.
	db, err := imessage.Open(copied)
	testutil.MustNoErr(t, err, "open snapshot")
	db.Close()
}

func TestSnapshotMissingArchive(t *testing.T) {
	_, err := imessage.Snapshot(filepath.Join(t.TempDir(), "absent.db"), t.TempDir())
	if err == nil {
		t.Fatal("Snapshot of absent archive should fail")
	}
	if !eris.Is(err, imessage.ErrArchiveMissing) {
		t.Errorf("error = %v, want ErrArchiveMissing", err)
	}
}
