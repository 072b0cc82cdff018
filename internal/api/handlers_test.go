package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatvault/chatvault/internal/ask"
	"github.com/chatvault/chatvault/internal/config"
	"github.com/chatvault/chatvault/internal/search"
	"github.com/chatvault/chatvault/internal/store"
)

type stubStore struct {
	threads  []store.Thread
	messages map[int64][]store.Message
	stats    store.Stats
}

func (s *stubStore) ListThreads(limit int) ([]store.Thread, error) {
	if limit < len(s.threads) {
		return s.threads[:limit], nil
	}
	return s.threads, nil
}

func (s *stubStore) GetThread(chatID int64) (*store.Thread, error) {
	for _, t := range s.threads {
		if t.ChatID == chatID {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *stubStore) GetMessages(chatID int64, limit int) ([]store.Message, error) {
	return s.messages[chatID], nil
}

func (s *stubStore) GetStats() (*store.Stats, error) {
	return &s.stats, nil
}

type stubSearcher struct {
	matches []search.Match
	err     error
}

func (s *stubSearcher) SearchExact(query string, contextSize int, chatID int64) ([]search.Match, error) {
	if query == "" {
		return nil, search.ErrEmptyQuery
	}
	return s.matches, s.err
}

func (s *stubSearcher) ExpandedContext(chatID, messageID int64, before, after int) (search.Match, error) {
	if len(s.matches) == 0 {
		return search.Match{ChatID: chatID, MatchMessageID: messageID}, nil
	}
	return s.matches[0], s.err
}

type stubAsker struct {
	answer *ask.Answer
	err    error
}

func (s *stubAsker) Ask(_ context.Context, query string, chatID int64, start, end string) (*ask.Answer, error) {
	return s.answer, s.err
}

func newTestServer(t *testing.T, st *stubStore, se *stubSearcher, as Asker) *Server {
	t.Helper()
	cfg := &config.Config{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewServer(cfg, st, se, as, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandleListThreads(t *testing.T) {
	st := &stubStore{threads: []store.Thread{
		{ChatID: 1, Title: "Ski Trip", LastMessageAt: "2024-03-01 10:00:00"},
		{ChatID: 2, Title: "Alice", LastMessageAt: "2024-02-28 09:00:00"},
	}}
	s := newTestServer(t, st, &stubSearcher{}, nil)

	w := get(t, s, "/api/v1/threads")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Threads []ThreadInfo `json:"threads"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Threads) != 2 || resp.Threads[0].Title != "Ski Trip" {
		t.Errorf("threads = %+v", resp.Threads)
	}
}

func TestHandleGetMessages(t *testing.T) {
	st := &stubStore{
		threads: []store.Thread{{ChatID: 1, Title: "Ski Trip"}},
		messages: map[int64][]store.Message{
			1: {{MessageID: 10, ChatID: 1, SenderName: "ME", Text: "hi"}},
		},
	}
	s := newTestServer(t, st, &stubSearcher{}, nil)

	w := get(t, s, "/api/v1/threads/1/messages")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Title    string          `json:"title"`
		Messages []store.Message `json:"messages"`
	}
	decodeBody(t, w, &resp)
	if resp.Title != "Ski Trip" || len(resp.Messages) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleGetMessagesNotFound(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	if w := get(t, s, "/api/v1/threads/99/messages"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleGetMessagesBadID(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	if w := get(t, s, "/api/v1/threads/abc/messages"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	if w := get(t, s, "/api/v1/search"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	se := &stubSearcher{matches: []search.Match{
		{ChatID: 1, Title: "Ski Trip", MatchMessageID: 12},
	}}
	s := newTestServer(t, &stubStore{}, se, nil)

	w := get(t, s, "/api/v1/search?q=snow")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Total   int            `json:"total"`
		Matches []search.Match `json:"matches"`
	}
	decodeBody(t, w, &resp)
	if resp.Total != 1 || resp.Matches[0].MatchMessageID != 12 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleContextRequiresIDs(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	if w := get(t, s, "/api/v1/context?chat_id=1"); w.Code != http.StatusBadRequest {
		t.Errorf("missing message_id: status = %d, want 400", w.Code)
	}
	if w := get(t, s, "/api/v1/context?message_id=1"); w.Code != http.StatusBadRequest {
		t.Errorf("missing chat_id: status = %d, want 400", w.Code)
	}
	if w := get(t, s, "/api/v1/context?chat_id=1&message_id=10"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandleAsk(t *testing.T) {
	asker := &stubAsker{answer: &ask.Answer{Answer: "Friday", Sources: []ask.Source{{ChatID: 1, Title: "Work"}}}}
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, asker)

	body, _ := json.Marshal(AskRequest{
		Query: "when?", ChatID: 1, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-01",
	})
	req := httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ask.Answer
	decodeBody(t, w, &resp)
	if resp.Answer != "Friday" {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestHandleAskValidation(t *testing.T) {
	asker := &stubAsker{err: ask.ErrBadPeriod}
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, asker)

	body, _ := json.Marshal(AskRequest{Query: "q", ChatID: 1, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-05"})
	req := httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader([]byte(`{}`)))
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing query: status = %d, want 400", w.Code)
	}
}

func TestHandleAskUnavailable(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubSearcher{}, nil)
	body, _ := json.Marshal(AskRequest{Query: "q"})
	req := httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleStats(t *testing.T) {
	st := &stubStore{stats: store.Stats{ThreadCount: 3, MessageCount: 42, DatabaseSize: 1024}}
	s := newTestServer(t, st, &stubSearcher{}, nil)

	w := get(t, s, "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp StatsResponse
	decodeBody(t, w, &resp)
	if resp.TotalThreads != 3 || resp.TotalMessages != 42 || resp.DatabaseSize != 1024 {
		t.Errorf("stats = %+v", resp)
	}
}
