package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"complib/internal/app"
	"complib/internal/library"
	"complib/internal/model"
)

// component command
var componentCmd = &cobra.Command{
	Use:     "component",
	Aliases: []string{"c"},
	Short:   "Manage library components",
}

var componentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List and search components",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		status, _ := cmd.Flags().GetString("status")
		tag, _ := cmd.Flags().GetString("tag")
		author, _ := cmd.Flags().GetString("author")
		asJSON, _ := cmd.Flags().GetBool("json")

		if status != "" && model.Status(status) != library.StatusAll && !model.Status(status).Valid() {
			return fmt.Errorf("invalid status %q", status)
		}

		return withApp("ListComponents", func(a *app.App) error {
			components, err := a.ListComponents(library.Filter{
				Query:  query,
				Status: model.Status(status),
				Tag:    tag,
				Author: author,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), components)
			}
			renderComponents(cmd.OutOrStdout(), components)
			return nil
		})
	},
}

func renderComponents(w io.Writer, components []*model.GeneratedComponent) {
	if len(components) == 0 {
		fmt.Fprintln(w, "No components found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Status", "Version", "Author", "Tags", "Updated"})
	for _, c := range components {
		m := c.Metadata
		t.AppendRow(table.Row{m.ID, m.Name, m.Status, m.Version, m.Author, strings.Join(m.Tags, ", "), m.UpdatedAt.Format("2006-01-02")})
	}
	t.Render()
	fmt.Fprintf(w, "(%d components)\n", len(components))
}

var componentShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a component's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetBool("code")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withApp("ShowComponent", func(a *app.App) error {
			c, err := a.GetComponent(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, c)
			case code:
				fmt.Fprint(out, c.Code)
				return nil
			}

			m := c.Metadata
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"ID", m.ID},
				{"Name", m.Name},
				{"Description", m.Description},
				{"Status", m.Status},
				{"Version", m.Version},
				{"Author", m.Author},
				{"Framework", m.Framework},
				{"Tags", strings.Join(m.Tags, ", ")},
				{"Dependencies", strings.Join(c.Dependencies, ", ")},
				{"Assets", len(c.Assets)},
				{"Figma", m.FigmaURL},
				{"Created", m.CreatedAt.Format("2006-01-02 15:04:05")},
				{"Updated", m.UpdatedAt.Format("2006-01-02 15:04:05")},
			})
			t.Render()
			return nil
		})
	},
}

var componentAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Add a component from a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nc := library.NewComponent{}
		nc.Name, _ = cmd.Flags().GetString("name")
		nc.Description, _ = cmd.Flags().GetString("description")
		nc.Tags, _ = cmd.Flags().GetStringSlice("tags")
		nc.Dependencies, _ = cmd.Flags().GetStringSlice("deps")
		nc.FigmaURL, _ = cmd.Flags().GetString("figma-url")
		nc.FigmaNodeID, _ = cmd.Flags().GetString("figma-node")
		nc.Author, _ = cmd.Flags().GetString("author")

		return withApp("AddComponent", func(a *app.App) error {
			c, err := a.AddComponentFromFile(args[0], nc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", c.Metadata.Name, c.Metadata.ID)
			return nil
		})
	},
}

var componentDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("DeleteComponent", func(a *app.App) error {
			deleted, err := a.DeleteComponent(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "No component %s.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var componentDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Write a component's source to <Name>.tsx",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")

		return withApp("DownloadComponent", func(a *app.App) error {
			path, err := a.DownloadComponent(args[0], dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		})
	},
}

var componentTemplateCmd = &cobra.Command{
	Use:   "template NAME",
	Short: "Print starter source for a new component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), library.ComponentTemplate(args[0]))
		return nil
	},
}

// preview command
var previewCmd = &cobra.Command{
	Use:   "preview ID",
	Short: "Render a component's mock preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")

		return withApp("Preview", func(a *app.App) error {
			out := cmd.OutOrStdout()
			if asHTML {
				html, err := a.PreviewHTML(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, html)
				return nil
			}

			p, err := a.Preview(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Component: %s\n", p.ComponentName)
			fmt.Fprintf(out, "Kind:      %s\n", p.Kind)
			fmt.Fprintf(out, "Props:     %+v\n", p.Props)
			fmt.Fprintln(out)
			fmt.Fprintln(out, p.HTML)
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the action history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("History", func(a *app.App) error {
			entries, err := a.History()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history recorded.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"When", "Action", "Component", "Details"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.ComponentID, string(e.Details)})
			}
			t.Render()
			return nil
		})
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	componentCmd.AddCommand(componentListCmd)
	componentListCmd.Flags().StringP("query", "q", "", "Match name, description or tag")
	componentListCmd.Flags().StringP("status", "s", "", "Filter by status (draft, review, approved, deprecated, all)")
	componentListCmd.Flags().String("tag", "", "Filter by tag")
	componentListCmd.Flags().String("author", "", "Filter by author")
	componentListCmd.Flags().Bool("json", false, "Print JSON")

	componentCmd.AddCommand(componentShowCmd)
	componentShowCmd.Flags().Bool("code", false, "Print only the source")
	componentShowCmd.Flags().Bool("json", false, "Print JSON")

	componentCmd.AddCommand(componentAddCmd)
	componentAddCmd.Flags().String("name", "", "Component name (default: the exported function)")
	componentAddCmd.Flags().String("description", "", "Description")
	componentAddCmd.Flags().StringSlice("tags", nil, "Tags")
	componentAddCmd.Flags().StringSlice("deps", nil, "Package dependencies")
	componentAddCmd.Flags().String("figma-url", "", "Source Figma URL")
	componentAddCmd.Flags().String("figma-node", "", "Source Figma node id")
	componentAddCmd.Flags().String("author", "", "Author")

	componentCmd.AddCommand(componentDeleteCmd)

	componentCmd.AddCommand(componentDownloadCmd)
	componentDownloadCmd.Flags().StringP("out", "o", ".", "Output directory")

	componentCmd.AddCommand(componentTemplateCmd)

	previewCmd.Flags().Bool("html", false, "Print the framed preview HTML, or the error state")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")
}
