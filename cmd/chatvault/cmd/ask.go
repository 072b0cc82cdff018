package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/ask"
)

var (
	askChatID int64
	askDay    string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question about one thread on one day",
	Long: `Answer a free-text question from one thread's messages on one
calendar day, using the configured answering model.

Configure the model in config.toml:
  [ask]
  api_key = "..."
  model = "gpt-4o-mini"

Examples:
  chatvault ask --chat 42 --day 2024-03-01 "what time is dinner?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if askChatID == 0 {
			return fmt.Errorf("--chat is required (find ids with 'chatvault threads')")
		}
		if cfg.Ask.APIKey == "" {
			return fmt.Errorf("no answering model configured: set [ask] api_key in config.toml")
		}
		day := askDay
		if day == "" {
			day = time.Now().Format("2006-01-02")
		}
		question := strings.Join(args, " ")

		s, err := openExistingStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		llm := ask.NewOpenAIClient(cfg.Ask.Server, cfg.Ask.APIKey, cfg.Ask.Model)
		svc := ask.NewService(s, llm, ask.Options{
			MaxContextChars: cfg.Ask.MaxContextChars,
			CacheTTL:        time.Duration(cfg.Ask.CacheTTLSeconds) * time.Second,
			Logger:          logger,
		})

		answer, err := svc.Ask(cmd.Context(), question, askChatID, day, day)
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}

		fmt.Println(answer.Answer)
		for _, src := range answer.Sources {
			fmt.Printf("\nSource: %s (chat %d)\n", src.Title, src.ChatID)
		}
		if answer.Highlight != nil {
			fmt.Println()
			for _, m := range answer.Highlight.Messages {
				marker := " "
				if m.IsMatch {
					marker = ">"
				}
				fmt.Printf("  %s [%s] %s: %s\n", marker, m.SentAt, m.SenderName, m.Text)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Int64Var(&askChatID, "chat", 0, "chat id to answer from (required)")
	askCmd.Flags().StringVar(&askDay, "day", "", "calendar day YYYY-MM-DD (default: today)")
	rootCmd.AddCommand(askCmd)
}
