package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var messagesLimit int

var messagesCmd = &cobra.Command{
	Use:   "messages <chat-id>",
	Short: "Show a thread's most recent messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("chat id must be a number, got %q", args[0])
		}

		s, err := openExistingStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		thread, err := s.GetThread(chatID)
		if err != nil {
			return fmt.Errorf("get thread: %w", err)
		}
		if thread == nil {
			fmt.Printf("No thread with chat id %d.\n", chatID)
			return nil
		}

		messages, err := s.GetMessages(chatID, messagesLimit)
		if err != nil {
			return fmt.Errorf("get messages: %w", err)
		}

		fmt.Printf("%s (chat %d)\n\n", thread.Title, chatID)
		// Newest first from the store; print oldest first for reading.
		for i := len(messages) - 1; i >= 0; i-- {
			m := messages[i]
			fmt.Printf("[%s] %s: %s\n", m.SentAt, m.SenderName, m.Text)
		}
		return nil
	},
}

func init() {
	messagesCmd.Flags().IntVar(&messagesLimit, "limit", 50, "maximum messages to show")
	rootCmd.AddCommand(messagesCmd)
}
