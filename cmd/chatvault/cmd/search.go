package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/search"
)

var (
	searchContext int
	searchChatID  int64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search message text with surrounding context",
	Long: `Search message text for a case-insensitive substring.

Each hit is shown inside a window of surrounding messages from its thread,
newest hit first.

Examples:
  chatvault search "ski trip"
  chatvault search --chat 42 --context 5 dinner`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		s, err := openExistingStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		matches, err := search.New(s).SearchExact(query, searchContext, searchChatID)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(matches) == 0 {
			fmt.Printf("No matches for %q.\n", query)
			return nil
		}

		for _, m := range matches {
			fmt.Printf("=== %s (chat %d, message %d)\n", m.Title, m.ChatID, m.MatchMessageID)
			if m.HasMoreBefore {
				fmt.Println("    ...")
			}
			for i, msg := range m.Window {
				marker := " "
				if i == m.MatchIndex {
					marker = ">"
				}
				fmt.Printf("  %s [%s] %s: %s\n", marker, msg.SentAt, msg.SenderName, msg.Text)
			}
			if m.HasMoreAfter {
				fmt.Println("    ...")
			}
			fmt.Println()
		}
		fmt.Printf("%d matches.\n", len(matches))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchContext, "context", search.DefaultContextSize, "messages of context on each side")
	searchCmd.Flags().Int64Var(&searchChatID, "chat", 0, "restrict to one chat id")
	rootCmd.AddCommand(searchCmd)
}
