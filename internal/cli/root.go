package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/config"
	"github.com/daydemir/devpilot/internal/display"
	"github.com/daydemir/devpilot/internal/filelock"
	"github.com/daydemir/devpilot/internal/llm"
	"github.com/daydemir/devpilot/internal/logging"
	"github.com/daydemir/devpilot/internal/planner"
	"github.com/daydemir/devpilot/internal/shell"
	"github.com/daydemir/devpilot/internal/workspace"
)

var (
	version = "0.1.0"
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "devpilot",
	Short: "Turn a task description into executed project changes",
	Long: `devpilot asks what you want built, has a language model plan it,
and runs the resulting tasks against your project: shell commands,
file writes and edits, package installs and generated code.

After each run you can describe what to fix and devpilot plans and
runs the follow-up tasks.

Get started:
  export OPENROUTER_API_KEY=...
  devpilot init      Write .devpilot/config.yaml
  devpilot           Start an interactive session`,
	Version:      version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context
// shared by every blocking call.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .devpilot/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SetVersionTemplate(fmt.Sprintf("devpilot version %s\n", version))
}

func runRoot(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, wsDir, err := loadConfig(cwd)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer closeLog()

	lock, err := filelock.AcquireRunLock(workspace.LockDir(), cwd)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	client, err := llm.NewOpenRouter(cfg.LLMClient(), logger)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return fmt.Errorf(`%w

Set one of:
  llm.api_key in .devpilot/config.yaml
  DEVPILOT_LLM_API_KEY or OPENROUTER_API_KEY in the environment`, err)
	}
	if err != nil {
		return err
	}

	logger.Info("session started",
		zap.String("cwd", cwd),
		zap.String("model", client.Model()),
		logging.RedactedString("api_key", cfg.LLM.APIKey))

	d := display.NewWithOptions(os.Stdout, noColor)
	d.Info("Model", client.Model())

	flow := &Flow{
		Planner:  planner.NewPlanner(client, wsDir, logger),
		Prompter: display.NewTerminalPrompter(os.Stdin, d),
		Display:  d,
		Runner:   shell.NewExec(cfg.Flow.Shell),
		Logger:   logger,
		WorkDir:  cwd,
		Settings: cfg.Flow,
	}
	return flow.Run(cmd.Context())
}

// loadConfig reads --config when given, otherwise the nearest workspace.
// Without a workspace the defaults and environment apply. The returned dir
// is where prompt overrides are looked up.
func loadConfig(cwd string) (*config.Config, string, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, cwd, nil
	}

	wsDir, err := workspace.FindFrom(cwd)
	if errors.Is(err, workspace.ErrNoWorkspace) {
		wsDir = cwd
	} else if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(wsDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, wsDir, nil
}
