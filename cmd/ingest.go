package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/di37/climate-agent-observability/internal/pkg/logger"
	"github.com/di37/climate-agent-observability/internal/store"
)

var ingestDBPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest <csv-file>",
	Short: "Ingest the climate CSV dataset into SQLite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := ingestDBPath

		if err := logger.Init(logger.Config{Level: "info", Format: "console"}); err != nil {
			return err
		}
		defer logger.Sync()

		fmt.Printf("Reading CSV file: %s\n", args[0])

		rows, err := store.Ingest(args[0], dbPath)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		fmt.Printf("Ingested %d rows into table %q at %s\n", rows, store.TableName, dbPath)

		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		count, err := st.RowCount()
		if err != nil {
			return err
		}
		fmt.Printf("Verified: database contains %d rows\n", count)

		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "data/climate_agriculture.db", "Database file path")
}
