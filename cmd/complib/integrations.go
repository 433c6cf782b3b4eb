package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"complib/internal/app"
	"complib/internal/figma"
	"complib/internal/model"
	"complib/internal/tokens"
)

// publish command
var publishCmd = &cobra.Command{
	Use:   "publish ID",
	Short: "Publish a component to the configured GitHub repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Publish", func(a *app.App) error {
			res, err := a.Publish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range res.Files {
				fmt.Fprintf(out, "  %s\n", f)
			}
			for _, s := range res.SkippedAssets {
				fmt.Fprintf(out, "  skipped asset %s (not readable)\n", s)
			}
			fmt.Fprintf(out, "Published %d file(s) to %s\n", len(res.Files), res.Dir)
			return nil
		})
	},
}

// repo command
var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage GitHub repositories",
}

var repoCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a repository for the authenticated user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		private, _ := cmd.Flags().GetBool("private")

		return withApp("CreateRepo", func(a *app.App) error {
			url, err := a.CreateRepo(cmd.Context(), args[0], description, private)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", url)
			return nil
		})
	},
}

// figma command
var figmaCmd = &cobra.Command{
	Use:   "figma",
	Short: "Read from the Figma API",
}

var figmaNodesCmd = &cobra.Command{
	Use:   "nodes NODE_ID...",
	Short: "Fetch nodes of a Figma file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, _ := cmd.Flags().GetString("file")

		return withApp("FigmaNodes", func(a *app.App) error {
			nodes, err := a.FigmaNodes(cmd.Context(), fileID, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), nodes)
		})
	},
}

var figmaImagesCmd = &cobra.Command{
	Use:   "images NODE_ID...",
	Short: "Get image export URLs for nodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, _ := cmd.Flags().GetString("file")
		format, err := imageFormat(cmd)
		if err != nil {
			return err
		}

		return withApp("FigmaImages", func(a *app.App) error {
			urls, err := a.FigmaImages(cmd.Context(), fileID, args, format)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(urls))
			for id := range urls {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Node", "URL"})
			for _, id := range ids {
				t.AppendRow(table.Row{id, urls[id]})
			}
			t.Render()
			return nil
		})
	},
}

var figmaAssetsCmd = &cobra.Command{
	Use:   "assets NODE_ID...",
	Short: "Download node exports into the asset directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, _ := cmd.Flags().GetString("file")
		typ, _ := cmd.Flags().GetString("type")
		componentID, _ := cmd.Flags().GetString("component")
		format, err := imageFormat(cmd)
		if err != nil {
			return err
		}

		return withApp("FigmaAssets", func(a *app.App) error {
			res, err := a.FigmaAssets(cmd.Context(), app.AssetsRequest{
				FileID:      fileID,
				NodeIDs:     args,
				Format:      format,
				Type:        model.AssetType(typ),
				ComponentID: componentID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "Size", "Dimensions", "Path"})
			for _, f := range res.Assets {
				dims := ""
				if f.Dimensions != nil {
					dims = fmt.Sprintf("%dx%d", f.Dimensions.Width, f.Dimensions.Height)
				}
				t.AppendRow(table.Row{f.Name, f.Type, f.Size, dims, f.LocalPath})
			}
			t.Render()
			fmt.Fprintf(out, "Wrote %s and %s\n", res.IndexPath, res.ManifestPath)
			return nil
		})
	},
}

func imageFormat(cmd *cobra.Command) (figma.ImageFormat, error) {
	v, _ := cmd.Flags().GetString("format")
	f := figma.ImageFormat(v)
	if !f.Valid() {
		return "", fmt.Errorf("invalid image format %q (png, jpg or svg)", v)
	}
	return f, nil
}

// tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Work with design tokens",
}

var tokensGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Tailwind config from design tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := app.TokenSource{}
		src.Path, _ = cmd.Flags().GetString("source")
		src.FromFigma, _ = cmd.Flags().GetBool("figma")
		src.FileID, _ = cmd.Flags().GetString("file")
		src.Output, _ = cmd.Flags().GetString("out")

		return withApp("GenerateTokens", func(a *app.App) error {
			cfg, path, err := a.GenerateTokens(cmd.Context(), src)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range cfg.Groups {
				fmt.Fprintf(out, "  %-13s %d\n", g.Category, len(g.Entries))
			}
			fmt.Fprintf(out, "Wrote %s\n", path)
			return nil
		})
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse the library over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp("Serve", func(a *app.App) error {
			return a.Serve(ctx, addr)
		})
	},
}

func init() {
	repoCmd.AddCommand(repoCreateCmd)
	repoCreateCmd.Flags().String("description", "", "Repository description")
	repoCreateCmd.Flags().Bool("private", false, "Create a private repository")

	figmaCmd.PersistentFlags().String("file", "", "Figma file id (default: configured file)")
	figmaCmd.AddCommand(figmaNodesCmd)
	figmaCmd.AddCommand(figmaImagesCmd)
	figmaImagesCmd.Flags().String("format", string(figma.FormatPNG), "png, jpg or svg")
	figmaCmd.AddCommand(figmaAssetsCmd)
	figmaAssetsCmd.Flags().String("format", string(figma.FormatPNG), "png, jpg or svg")
	figmaAssetsCmd.Flags().String("type", string(model.AssetImage), "image, icon, font or other")
	figmaAssetsCmd.Flags().String("component", "", "Attach the assets to this component")

	tokensCmd.AddCommand(tokensGenerateCmd)
	tokensGenerateCmd.Flags().String("source", "", "YAML or JSON token file (default: configured source or built-in tokens)")
	tokensGenerateCmd.Flags().Bool("figma", false, "Read tokens from the Figma file's local variables")
	tokensGenerateCmd.Flags().String("file", "", "Figma file id for --figma")
	tokensGenerateCmd.Flags().StringP("out", "o", "", "Output path (default: "+tokens.DefaultConfigPath+"; .json writes JSON)")

	serveCmd.Flags().String("addr", "", "Listen address (default: configured server.addr)")
}
