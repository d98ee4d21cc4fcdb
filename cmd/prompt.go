package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/di37/climate-agent-observability/internal/config"
	"github.com/di37/climate-agent-observability/internal/observe"
	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

var createPromptCmd = &cobra.Command{
	Use:   "create-prompt",
	Short: "Create or update the managed agent prompt at the trace backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if err := logger.Init(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logger.Sync()

		client := newTraceClient(cfg)
		defer client.Shutdown()

		fmt.Printf("Creating/updating agent prompt %q...\n", cfg.Agent.PromptName)

		if err := observe.CreateAgentPrompt(client, cfg.Agent.PromptName, cfg.Agent.Model); err != nil {
			return fmt.Errorf("prompt setup failed: %w", err)
		}

		fmt.Printf("Done. View the prompt at: %s/prompts\n", cfg.Trace.Host)
		return nil
	},
}
