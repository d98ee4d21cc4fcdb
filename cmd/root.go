package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/agent"
	"github.com/di37/climate-agent-observability/internal/config"
	"github.com/di37/climate-agent-observability/internal/llm"
	"github.com/di37/climate-agent-observability/internal/pkg/logger"
	"github.com/di37/climate-agent-observability/internal/store"
	"github.com/di37/climate-agent-observability/internal/trace"
)

// Version is set at build time
var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "climate-agent",
	Short: "Climate Agriculture Agent with full observability",
	Long: `Climate Agriculture Agent - natural language queries over climate data.

Features:
  - Natural language queries with SQL execution on the climate dataset
  - Full tracing with automatic quality scoring
  - User feedback (+/-) correlated to traces
  - Centralized prompt management with local fallback

Commands:
  (default)      - Interactive chat
  demo           - Run demo queries
  create-prompt  - Create/update the managed agent prompt
  ingest         - Ingest the climate CSV into SQLite`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var createPromptFlag bool

func init() {
	rootCmd.Flags().BoolVar(&createPromptFlag, "create-prompt", false, "Create/update the managed agent prompt and exit")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(createPromptCmd)
	rootCmd.AddCommand(ingestCmd)
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// app holds the wired application components.
type app struct {
	cfg         *config.Config
	traceClient *trace.Client
	store       *store.Store
	agent       *agent.Observed
}

// setup loads configuration and wires the full stack: logger, data store,
// trace client, observed agent. Any failure here is an unrecoverable startup
// failure.
func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger.Info("climate agriculture agent starting", zap.String("version", Version))

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	traceClient := newTraceClient(cfg)

	llmClient := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	observed, err := agent.NewObserved(cfg, traceClient, llmClient, st)
	if err != nil {
		st.Close()
		traceClient.Shutdown()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		traceClient: traceClient,
		store:       st,
		agent:       observed,
	}, nil
}

// newTraceClient builds the trace client from config. Missing credentials
// disable tracing rather than failing startup: observability never gates the
// agent.
func newTraceClient(cfg *config.Config) *trace.Client {
	enabled := cfg.Trace.Enabled && cfg.IsTracingConfigured()
	if !enabled {
		logger.Warn("trace backend credentials missing, tracing disabled")
	}

	return trace.New(trace.Config{
		Host:      cfg.Trace.Host,
		PublicKey: cfg.Trace.PublicKey,
		SecretKey: cfg.Trace.SecretKey,
		Enabled:   &enabled,
	})
}

func (a *app) close() {
	a.traceClient.Shutdown()
	a.store.Close()
	logger.Sync()
}

func runChat(cmd *cobra.Command, args []string) error {
	if createPromptFlag {
		return createPromptCmd.RunE(cmd, args)
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	session := agent.NewChatSession(a.agent, a.cfg.Agent.Name, os.Stdin, os.Stdout)
	return session.Run(cmd.Context())
}
