package main

import (
	"fmt"
	"os"

	"complib/internal/app"
	"complib/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddComponent", "Publish").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh App and records its outcome on the operation.
func withApp(operation string, fn func(a *app.App) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(a)
	a.Fail(err)
	return err
}

var rootCmd = &cobra.Command{
	Use:          "complib",
	Short:        "Component library manager",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Base Dir: %s\n", defaults.BaseDir)
		fmt.Fprintln(out, "Run `complib keys init` to enable sealed exports.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Log Level:  %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "Store:      %s\n", cfg.Store.Type)
		fmt.Fprintf(out, "Figma:      file=%s token=%s\n", cfg.Figma.FileID, redact(cfg.Figma.AccessToken))
		fmt.Fprintf(out, "GitHub:     %s/%s@%s token=%s\n", cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch, redact(cfg.GitHub.Token))
		fmt.Fprintf(out, "Tokens:     %s -> %s\n", orBuiltin(cfg.Tokens.SourcePath), cfg.Tokens.OutputPath)
		fmt.Fprintf(out, "Assets Dir: %s\n", cfg.Assets.Dir)
		fmt.Fprintf(out, "Server:     %s\n", cfg.Server.Addr)
		return nil
	},
}

func redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}

func orBuiltin(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(componentCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(figmaCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(serveCmd)
}
