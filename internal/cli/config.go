package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daydemir/devpilot/internal/workspace"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or modify configuration",
	Long: `View or modify devpilot configuration.

Examples:
  devpilot config                        Show all config
  devpilot config llm.model              Get a specific value
  devpilot config flow.max_fix_depth 3   Set a value`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			wsDir, err := workspace.Find()
			if err != nil {
				return err
			}
			configPath = workspace.ConfigPath(wsDir)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return showConfig(out, configPath)
		case 1:
			return getConfigValue(out, configPath, args[0])
		case 2:
			return setConfigValue(out, configPath, args[0], args[1])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(out io.Writer, configPath string) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(out, string(content))
	return nil
}

func readConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

func getConfigValue(out io.Writer, configPath, key string) error {
	v, err := readConfig(configPath)
	if err != nil {
		return err
	}

	value := v.Get(key)
	if value == nil {
		return fmt.Errorf("key not found: %s", key)
	}

	if strings.HasSuffix(key, "api_key") {
		value = maskSecret(fmt.Sprint(value))
	}
	fmt.Fprintln(out, value)
	return nil
}

func setConfigValue(out io.Writer, configPath, key, value string) error {
	v, err := readConfig(configPath)
	if err != nil {
		return err
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if strings.HasSuffix(key, "api_key") {
		value = maskSecret(value)
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// maskSecret keeps the last four characters of s
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
