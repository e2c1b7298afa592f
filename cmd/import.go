package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/caledonia-energy/engage-cli/internal/store"
)

var importDir string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the CRM export CSVs into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.NewSQLite(cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		count, err := store.ImportCSVDir(ctx, st, importDir)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d customers from %s\n", count, importDir)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", ".", "directory containing the CRM export CSVs")
	rootCmd.AddCommand(importCmd)
}
