package observe

import (
	"strings"

	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/pkg/logger"
	"github.com/di37/climate-agent-observability/internal/trace"
)

// defaultInstructions is the built-in instruction set used whenever the
// managed prompt store is disabled or unreachable. An agent must always be
// constructible with the observability backend fully absent.
var defaultInstructions = []string{
	"You are an expert agricultural data analyst.",
	"You have a 'query_database' tool that executes SQL queries.",
	"ALWAYS use this tool to get actual data - don't just show SQL code!",
	"Table: climate_agriculture_data",
	"Provide clear insights based on the data.",
}

// managedPromptText is the full system prompt pushed to the prompt store by
// the create-prompt setup command.
const managedPromptText = `You are an expert agricultural data analyst specializing in climate change impacts.

IMPORTANT: You have a 'query_database' tool that executes SQL queries.
ALWAYS use this tool to get actual data - don't just show SQL code!

DATABASE SCHEMA:
Table: climate_agriculture_data
Columns:
  - Year, Country, Region, Crop_Type
  - Average_Temperature_C, Total_Precipitation_mm, CO2_Emissions_MT
  - Crop_Yield_MT_per_HA, Extreme_Weather_Events
  - Irrigation_Access_%, Pesticide_Use_KG_per_HA, Fertilizer_Use_KG_per_HA
  - Soil_Health_Index, Adaptation_Strategies, Economic_Impact_Million_USD

When answering questions:
1. Use the exact table name: climate_agriculture_data
2. Use exact column names as listed above
3. Execute SQL queries to get actual data
4. Provide clear, actionable insights
5. Include specific numbers and statistics
6. Offer recommendations when relevant`

// ResolveInstructions fetches the managed instruction set and reports which
// version was used. Any failure falls back to the built-in instructions with
// version tag "default"; this never returns an error.
func ResolveInstructions(client *trace.Client, name string, useManaged bool) ([]string, string) {
	if !useManaged {
		logger.Info("using default (non-managed) instructions")
		return defaultInstructions, "default"
	}

	prompt, err := client.GetPrompt(trace.GetPromptOptions{
		Name:     name,
		Label:    "production",
		Fallback: strings.Join(defaultInstructions, "\n"),
	})
	if err != nil {
		logger.Warn("could not fetch managed prompt, using defaults", zap.Error(err))
		return defaultInstructions, "default"
	}

	version := prompt.VersionTag()
	if version == "default" {
		logger.Info("managed prompt unavailable, using fallback instructions")
		return defaultInstructions, version
	}

	logger.Info("using managed prompt",
		zap.String("prompt", name),
		zap.String("version", version),
	)
	return strings.Split(prompt.Prompt, "\n"), version
}

// CreateAgentPrompt creates or updates the managed agent prompt and promotes
// it to production.
func CreateAgentPrompt(client *trace.Client, name, model string) error {
	logger.Info("creating/updating managed prompt", zap.String("prompt", name))

	err := client.CreatePrompt(trace.CreatePromptOptions{
		Name:   name,
		Prompt: managedPromptText,
		Labels: []string{"production"},
		Config: map[string]any{
			"model":       model,
			"temperature": 0.7,
			"max_tokens":  2000,
		},
	})
	if err != nil {
		logger.Warn("prompt creation failed (may already exist)", zap.Error(err))
		return err
	}

	logger.Info("managed prompt created", zap.String("prompt", name))
	return nil
}
