package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

var demoQueries = []string{
	"What are the top 3 countries by average crop yield?",
	"How many extreme weather events occurred in India?",
	"Compare the economic impact of different adaptation strategies",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run demo queries and show their trace IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		logger.Info("running demo mode", zap.Int("queries", len(demoQueries)))
		fmt.Printf("Running demo with %d example queries...\n", len(demoQueries))

		for i, question := range demoQueries {
			fmt.Printf("\n%s\n", strings.Repeat("=", 80))
			fmt.Printf("Query %d: %s\n", i+1, question)
			fmt.Printf("%s\n\n", strings.Repeat("=", 80))

			result, err := a.agent.Query(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("demo query %d failed: %w", i+1, err)
			}

			fmt.Println(result.Output)
			if result.TraceID != "" {
				fmt.Printf("\nTrace: %s\n", result.TraceID)
			}
		}

		fmt.Println("\nDemo complete. Check the trace dashboard.")
		return nil
	},
}
