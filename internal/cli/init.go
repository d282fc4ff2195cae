package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daydemir/devpilot/internal/workspace"
)

var (
	initForce   bool
	initPrompts bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a devpilot workspace",
	Long: `Initialize a devpilot workspace in the current directory.

Creates .devpilot/ folder with:
  - config.yaml      Model, retry and flow settings
  - prompts/         Editable prompt templates (with --prompts)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		wsPath, err := workspace.Init(cwd, initForce, initPrompts)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized devpilot workspace in %s\n", wsPath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devpilot version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devpilot version %s\n", version)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing workspace")
	initCmd.Flags().BoolVar(&initPrompts, "prompts", false, "copy the prompt templates for editing")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
