package ask

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chatvault/chatvault/internal/store"
)

// Source names a thread that contributed to an answer.
type Source struct {
	ChatID int64  `json:"chat_id"`
	Title  string `json:"title"`
}

// Answer is the finished result of one ask: the model's reply, where it came
// from, and the quoted message if one was found.
type Answer struct {
	Answer    string     `json:"answer"`
	Sources   []Source   `json:"sources"`
	Highlight *Highlight `json:"highlight"`
}

// Options tunes a Service; zero values take defaults.
type Options struct {
	MaxContextChars int
	CacheTTL        time.Duration
	Logger          *slog.Logger
}

// Service runs the full ask pipeline: validate, consult the cache, assemble
// context, call the model, locate the highlight, cache the result.
type Service struct {
	assembler *Assembler
	llm       LLMClient
	cache     *Cache
	maxChars  int
	logger    *slog.Logger
}

// NewService creates a Service answering from st via llm.
func NewService(st *store.Store, llm LLMClient, opts Options) *Service {
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		assembler: NewAssembler(st),
		llm:       llm,
		cache:     NewCache(opts.CacheTTL),
		maxChars:  opts.MaxContextChars,
		logger:    opts.Logger,
	}
}

// Ask answers query from one thread's messages on one calendar day.
// A period that is malformed or spans more than a day is ErrBadPeriod,
// checked before the cache or the store are touched. A day with no usable
// context gets a fixed "nothing here" answer that is never cached.
func (s *Service) Ask(ctx context.Context, query string, chatID int64, start, end string) (*Answer, error) {
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(query, chatID, start, end); ok {
		s.logger.Debug("answer served from cache", "chat_id", chatID, "day", start)
		return &cached, nil
	}

	bundle, err := s.assembler.Build(chatID, start, end, s.maxChars)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(bundle.Transcript) == "" {
		return &Answer{
			Answer:  fmt.Sprintf("No messages in this thread on %s. Try a different day or thread.", start),
			Sources: []Source{},
		}, nil
	}

	prompt := fmt.Sprintf("Question: %s\n\nMessages:\n%s\n\n"+
		"Which message(s) answer the question best? Quote the exact text, or say %q.",
		query, bundle.Transcript, "none")

	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ask model: %w", err)
	}
	reply = strings.TrimSpace(reply)

	answer := Answer{Answer: reply, Sources: []Source{}}
	if bundle.ThreadTitle != "" {
		answer.Sources = append(answer.Sources, Source{ChatID: chatID, Title: bundle.ThreadTitle})
	}
	answer.Highlight = FindHighlight(bundle.MessagesUsed, reply, chatID, bundle.ThreadTitle)

	s.cache.Put(query, chatID, start, end, answer)
	return &answer, nil
}
