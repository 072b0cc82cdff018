package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/handle"
	"github.com/chatvault/chatvault/internal/store"
)

var importContactsCmd = &cobra.Command{
	Use:   "import-contacts <file.vcf>",
	Short: "Import a vCard contact list into an existing store",
	Long: `Import a vCard contact list into an existing store.

Contact names are used for thread titles and sender names at import time;
importing contacts after messages only affects future imports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contacts, err := handle.ParseVCardFile(args[0])
		if err != nil {
			return fmt.Errorf("parse contacts: %w", err)
		}

		s, err := openExistingStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		rows := make([]store.Contact, 0, len(contacts))
		for h, name := range contacts {
			rows = append(rows, store.Contact{Handle: h, Name: name})
		}
		if err := s.InsertContacts(rows); err != nil {
			return fmt.Errorf("insert contacts: %w", err)
		}

		fmt.Printf("Imported %d contacts from %s\n", len(rows), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importContactsCmd)
}
