package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stemma/internal/codec"
	"stemma/internal/domain"
	"stemma/internal/repository/sqlite"
)

func inspectCmd(opts *options) *cobra.Command {
	var (
		file      string
		format    string
		revisions bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [layout]",
		Short: "List stored layouts or show one layout",
		Long: "Without arguments, list the layouts in the database. With a name, show\n" +
			"that layout's people and parent links. --file inspects a layout file instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if file != "" {
				layout, err := readLayout(file)
				if err != nil {
					return err
				}
				return showLayout(w, layout, format)
			}

			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Path == "" {
				return fmt.Errorf("no database configured")
			}
			repo, err := sqlite.New(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			if len(args) == 0 {
				infos, err := repo.ListLayouts(ctx)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					subtle.Fprintln(w, "  no stored layouts")
					return nil
				}
				rows := make([][]string, 0, len(infos))
				for _, li := range infos {
					rows = append(rows, []string{li.Name, fmt.Sprint(li.Nodes), fmt.Sprint(li.Edges), li.UpdatedAt.Format("2006-01-02 15:04:05")})
				}
				table(w, []string{"NAME", "NODES", "EDGES", "UPDATED"}, rows)
				return nil
			}

			name := args[0]
			if revisions {
				revs, err := repo.Revisions(ctx, name)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(revs))
				for _, rev := range revs {
					rows = append(rows, []string{fmt.Sprint(rev.ID), fmt.Sprint(rev.Size), rev.CreatedAt.Format("2006-01-02 15:04:05")})
				}
				info.Fprintf(w, "%s: %d revisions\n", name, len(revs))
				table(w, []string{"ID", "BYTES", "ARCHIVED"}, rows)
				return nil
			}

			layout, err := repo.LoadLayout(ctx, name)
			if err != nil {
				return err
			}
			return showLayout(w, layout, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Inspect a layout file instead of the database")
	cmd.Flags().StringVar(&format, "format", "", "Export the layout as json or yaml instead of a summary")
	cmd.Flags().BoolVar(&revisions, "revisions", false, "List archived revisions of the layout")

	return cmd
}

// showLayout prints a summary, or the layout encoded in format when set
func showLayout(w io.Writer, layout *domain.Layout, format string) error {
	if format != "" {
		c, err := codec.ForFormat(format)
		if err != nil {
			return err
		}
		return c.Export(layout, w)
	}

	title := layout.Name
	if title == "" {
		title = "(unnamed)"
	}
	fmt.Fprintf(w, "%s %s\n", brand.Sprint(title), subtle.Sprintf("%d people, %d links, scale %.2f", len(layout.Nodes), len(layout.Edges), layout.View.Scale))

	names := make(map[domain.NodeID]string, len(layout.Nodes))
	rows := make([][]string, 0, len(layout.Nodes))
	for _, n := range layout.Nodes {
		name := strings.TrimSpace(n.FirstName + " " + n.LastName)
		if name == "" {
			name = "?"
		}
		names[n.ID] = name

		mark := ""
		if n.ID == layout.Selected {
			mark = good.Sprint("*")
		}
		sex := string(n.Sex)
		if sex == "" {
			sex = "-"
		}
		rows = append(rows, []string{shortID(n.ID), name, sex, fmt.Sprintf("%.0f,%.0f", n.Anchor.X, n.Anchor.Y), mark})
	}
	table(w, []string{"ID", "NAME", "SEX", "ANCHOR", "SEL"}, rows)

	if len(layout.Edges) > 0 {
		fmt.Fprintln(w)
		for _, e := range layout.Edges {
			fmt.Fprintf(w, "  %s %s %s\n", names[e.Start], subtle.Sprint("→"), names[e.End])
		}
	}
	return nil
}

func shortID(id domain.NodeID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
