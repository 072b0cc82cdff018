package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/store"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize the database schema",
	Long: `Initialize the chatvault database with the required schema.

This command creates the contacts, threads, thread_members, and messages
tables. It is safe to run multiple times - tables are only created if they
don't already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cfg.DatabasePath()
		logger.Info("initializing database", "path", dbPath)

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.InitSchema(); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}

		logger.Info("database initialized successfully")

		stats, err := s.GetStats()
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		printStats(dbPath, stats)
		return nil
	},
}

func printStats(dbPath string, stats *store.Stats) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("  Messages: %d\n", stats.MessageCount)
	fmt.Printf("  Threads:  %d\n", stats.ThreadCount)
	fmt.Printf("  Members:  %d\n", stats.MemberCount)
	fmt.Printf("  Contacts: %d\n", stats.ContactCount)
	fmt.Printf("  Size:     %.2f MB\n", float64(stats.DatabaseSize)/(1024*1024))
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
