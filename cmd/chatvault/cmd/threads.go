package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var threadsLimit int

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List threads by most recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openExistingStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		threads, err := s.ListThreads(threadsLimit)
		if err != nil {
			return fmt.Errorf("list threads: %w", err)
		}
		if len(threads) == 0 {
			fmt.Println("No threads. Run 'chatvault import' first.")
			return nil
		}

		for _, t := range threads {
			fmt.Printf("%8d  %-19s  %s\n", t.ChatID, t.LastMessageAt, t.Title)
		}
		return nil
	},
}

func init() {
	threadsCmd.Flags().IntVar(&threadsLimit, "limit", 50, "maximum threads to list")
	rootCmd.AddCommand(threadsCmd)
}
