package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mindmap/internal/app"
	"mindmap/internal/domain"
	"mindmap/internal/flow"
	"mindmap/internal/layout"
	"mindmap/internal/service"
)

func (e *env) open() (*app.Core, error) {
	return app.OpenCore(e.cfg, e.logger, service.NopEmitter{})
}

func newMCPCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout (no GUI)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(e.cfg, e.logger)
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List mindmaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := e.open()
			if err != nil {
				return err
			}
			defer core.Close()

			list, err := core.Mindmaps.ListMindmaps()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
			for _, m := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, m.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <mindmap-id>",
		Short: "Export a mindmap as flow JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := e.open()
			if err != nil {
				return err
			}
			defer core.Close()

			f, err := core.Mindmaps.ExportFlow(args[0])
			if err != nil {
				return err
			}
			if out != "" {
				return flow.WriteFile(out, f)
			}
			data, err := flow.Encode(f, true)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	var mindmapID, name string
	var arrange bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a flow JSON file into a mindmap (undoable)",
		Long: `Replaces the canvas of --mindmap with the file, or creates a new mindmap
named --name. With --layout the file may be raw model output (fenced JSON)
and positions are computed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (mindmapID == "") == (name == "") {
				return fmt.Errorf("exactly one of --mindmap or --name is required")
			}
			core, err := e.open()
			if err != nil {
				return err
			}
			defer core.Close()
			ctx := context.Background()

			if name != "" {
				m, err := core.Mindmaps.CreateMindmap(ctx, name)
				if err != nil {
					return err
				}
				mindmapID = m.ID
			}

			var st *domain.MindmapState
			if arrange {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				res, err := core.Mindmaps.GenerateFromText(ctx, mindmapID, string(raw))
				if err != nil {
					return err
				}
				for _, id := range res.Dropped {
					fmt.Fprintf(cmd.ErrOrStderr(), "dropped node %s: unknown type\n", id)
				}
				st = res.State
			} else {
				f, err := flow.ReadFile(args[0])
				if err != nil {
					return err
				}
				if st, err = core.Mindmaps.ImportFlow(ctx, mindmapID, f); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes, %d edges\n", mindmapID, len(st.Nodes), len(st.Edges))
			return nil
		},
	}
	cmd.Flags().StringVar(&mindmapID, "mindmap", "", "mindmap to replace")
	cmd.Flags().StringVar(&name, "name", "", "create a new mindmap with this name")
	cmd.Flags().BoolVar(&arrange, "layout", false, "treat the file as generated output and compute positions")
	return cmd
}

func newLayoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute positions for generated mindmap JSON and print the flow",
		Long:  "Reads model output (JSON, optionally in a code fence) from the file or stdin. Does not open the database.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			f, err := flow.ExtractGenerated(string(raw))
			if err != nil {
				return err
			}
			res := layout.New(e.cfg.Layout).Compute(f.Nodes, f.Edges)
			for _, id := range res.Dropped() {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropped node %s: unknown type\n", id)
			}

			kept := make(map[string]bool)
			for _, n := range res.Nodes() {
				kept[n.ID] = true
			}
			out := domain.Flow{Nodes: res.Nodes(), Edges: []domain.Edge{}}
			for _, edge := range f.Edges {
				if kept[edge.Source] && kept[edge.Target] {
					out.Edges = append(out.Edges, edge)
				}
			}
			data, err := flow.Encode(out, true)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newBackupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Export every mindmap into the backup directory now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := e.open()
			if err != nil {
				return err
			}
			defer core.Close()

			paths, err := core.Backups.RunNow(context.Background())
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
