package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"complib/internal/app"
	"complib/internal/model"
)

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole library as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		seal, _ := cmd.Flags().GetBool("seal")

		return withApp("ExportLibrary", func(a *app.App) error {
			if outPath == "" || outPath == "-" {
				return a.Export(cmd.OutOrStdout(), seal)
			}

			var buf bytes.Buffer
			if err := a.Export(&buf, seal); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported library to %s\n", outPath)
			return nil
		})
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a library export, replacing the sections it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		return withApp("ImportLibrary", func(a *app.App) error {
			if err := a.Import(data, func() (string, error) { return readPassphrase("Passphrase: ") }); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Library imported.")
			return nil
		})
	},
}

// seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the built-in sample components",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Seed", func(a *app.App) error {
			n, err := a.Seed()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample component(s)\n", n)
			return nil
		})
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the export sealing keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the sealing key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		return withApp("SetupKeys", func(a *app.App) error {
			if a.SealingConfigured() && !force {
				return errors.New("sealing keys already exist; use --force to replace them")
			}
			passphrase, err := readPassphrase("New passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase("Confirm passphrase: ")
			if err != nil {
				return err
			}
			if passphrase != confirm {
				return errors.New("passphrases do not match")
			}
			if err := a.SetupKeys(passphrase); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sealing keys written to %s\n", a.Config().Sealing.PublicKeyPath)
			return nil
		})
	},
}

// readPassphrase prompts on stderr and reads without echo when stdin is a
// terminal, or reads one line otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the stored project settings",
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the project settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ShowProject", func(a *app.App) error {
			pc, err := a.ProjectConfig()
			if err != nil {
				return err
			}
			if pc == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No project settings saved.")
				return nil
			}
			shown := *pc
			if shown.Figma.AccessToken != "" {
				shown.Figma.AccessToken = "(set)"
			}
			return writeJSON(cmd.OutOrStdout(), shown)
		})
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the project settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("SaveProject", func(a *app.App) error {
			pc, err := a.ProjectConfig()
			if err != nil {
				return err
			}
			if pc == nil {
				pc = &model.ProjectConfig{Framework: model.FrameworkReact, Styling: model.StylingTailwind}
			}

			flags := cmd.Flags()
			set := func(name string, dst *string) {
				if flags.Changed(name) {
					*dst, _ = flags.GetString(name)
				}
			}
			set("name", &pc.Name)
			set("github-owner", &pc.GitHub.Owner)
			set("github-repo", &pc.GitHub.Repo)
			set("github-branch", &pc.GitHub.Branch)
			set("figma-file", &pc.Figma.FileID)
			if flags.Changed("framework") {
				v, _ := flags.GetString("framework")
				pc.Framework = model.Framework(v)
			}
			if flags.Changed("styling") {
				v, _ := flags.GetString("styling")
				pc.Styling = model.Styling(v)
			}

			if err := a.SaveProjectConfig(pc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project settings saved.")
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().Bool("seal", false, "Seal the export to the configured key")

	keysCmd.AddCommand(keysInitCmd)
	keysInitCmd.Flags().Bool("force", false, "Replace existing keys")

	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectSetCmd.Flags().String("name", "", "Project name")
	projectSetCmd.Flags().String("framework", "", "react, vue or angular")
	projectSetCmd.Flags().String("styling", "", "tailwind, styled-components, css-modules or scss")
	projectSetCmd.Flags().String("github-owner", "", "Publish target owner")
	projectSetCmd.Flags().String("github-repo", "", "Publish target repository")
	projectSetCmd.Flags().String("github-branch", "", "Publish target branch")
	projectSetCmd.Flags().String("figma-file", "", "Figma file id")
}
