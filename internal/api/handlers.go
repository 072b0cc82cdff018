package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/chatvault/chatvault/internal/ask"
	"github.com/chatvault/chatvault/internal/search"
)

// ThreadInfo represents a thread in list responses.
type ThreadInfo struct {
	ChatID        int64  `json:"chat_id"`
	Title         string `json:"title"`
	LastMessageAt string `json:"last_message_at"`
}

// StatsResponse represents the store statistics.
type StatsResponse struct {
	TotalContacts int64 `json:"total_contacts"`
	TotalThreads  int64 `json:"total_threads"`
	TotalMembers  int64 `json:"total_members"`
	TotalMessages int64 `json:"total_messages"`
	DatabaseSize  int64 `json:"database_size_bytes"`
}

// AskRequest is the body of an ask call.
type AskRequest struct {
	Query       string `json:"query"`
	ChatID      int64  `json:"chat_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// queryInt reads an integer query parameter, falling back when absent or
// unparsable.
func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func queryInt64(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// handleStats returns store statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalContacts: stats.ContactCount,
		TotalThreads:  stats.ThreadCount,
		TotalMembers:  stats.MemberCount,
		TotalMessages: stats.MessageCount,
		DatabaseSize:  stats.DatabaseSize,
	})
}

// handleListThreads returns threads ordered by most recent activity.
func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	threads, err := s.store.ListThreads(limit)
	if err != nil {
		s.logger.Error("failed to list threads", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve threads")
		return
	}

	out := make([]ThreadInfo, len(threads))
	for i, t := range threads {
		out[i] = ThreadInfo{ChatID: t.ChatID, Title: t.Title, LastMessageAt: t.LastMessageAt}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"threads": out})
}

// handleGetMessages returns a thread's most recent messages.
func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Chat ID must be a number")
		return
	}

	thread, err := s.store.GetThread(chatID)
	if err != nil {
		s.logger.Error("failed to get thread", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve thread")
		return
	}
	if thread == nil {
		writeError(w, http.StatusNotFound, "not_found", "Thread not found")
		return
	}

	limit := queryInt(r, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	messages, err := s.store.GetMessages(chatID, limit)
	if err != nil {
		s.logger.Error("failed to get messages", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chat_id":  chatID,
		"title":    thread.Title,
		"messages": messages,
	})
}

// handleSearch runs a windowed substring search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	contextSize := queryInt(r, "context", search.DefaultContextSize)
	chatID, _ := queryInt64(r, "chat_id")

	matches, err := s.searcher.SearchExact(query, contextSize, chatID)
	if err != nil {
		if eris.Is(err, search.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "empty_query", "Query parameter 'q' is required")
			return
		}
		s.logger.Error("search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"total":   len(matches),
		"matches": matches,
	})
}

// handleContext re-windows one message with asymmetric reach.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	chatID, ok := queryInt64(r, "chat_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "Query parameter 'chat_id' is required")
		return
	}
	messageID, ok := queryInt64(r, "message_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "Query parameter 'message_id' is required")
		return
	}
	before := queryInt(r, "before", search.DefaultExpandBefore)
	after := queryInt(r, "after", search.DefaultExpandAfter)

	match, err := s.searcher.ExpandedContext(chatID, messageID, before, after)
	if err != nil {
		s.logger.Error("context lookup failed", "chat_id", chatID, "message_id", messageID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load context")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// handleAsk answers a question about one thread on one day.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.asker == nil {
		writeError(w, http.StatusServiceUnavailable, "ask_unavailable", "No answering model configured")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "Field 'query' is required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Query, req.ChatID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		if eris.Is(err, ask.ErrBadPeriod) {
			writeError(w, http.StatusBadRequest, "bad_period", "Period must be a single calendar day (YYYY-MM-DD)")
			return
		}
		s.logger.Error("ask failed", "chat_id", req.ChatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Ask failed")
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
