package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/CTAG07/podtags/pkg/depgraph"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newDepsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Query the dependencies recorded by builds",
	}
	cmd.AddCommand(
		newDepsListCmd(a, "of <pod-path>", "List the pod paths a document used", (*depgraph.Graph).Dependencies),
		newDepsListCmd(a, "on <pod-path>", "List the documents that used a pod path", (*depgraph.Graph).Dependents),
		newDepsStatsCmd(a),
		newDepsExportCmd(a),
		newDepsImportCmd(a),
	)
	return cmd
}

type pathQuery func(g *depgraph.Graph, ctx context.Context, path string) ([]string, error)

func newDepsListCmd(a *app, use, short string, query pathQuery) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), func(ctx context.Context, graph *depgraph.Graph) error {
				paths, err := query(graph, ctx, args[0])
				if err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), paths)
			})
		},
	}
}

func newDepsStatsCmd(a *app) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show graph totals and the most used pod paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), func(ctx context.Context, graph *depgraph.Graph) error {
				stats, err := graph.GetStats(ctx, top)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err = fmt.Fprintf(out, "edges: %d\nsources: %d\ntargets: %d\n", stats.Edges, stats.Sources, stats.Targets); err != nil {
					return err
				}
				for _, tc := range stats.Hottest {
					if _, err = fmt.Fprintf(out, "%6d  %s\n", tc.Dependents, tc.Target); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of most used pod paths to show")
	return cmd
}

func newDepsExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the graph as JSON to a file, or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), func(ctx context.Context, graph *depgraph.Graph) error {
				if len(args) == 0 {
					return graph.Export(ctx, cmd.OutOrStdout())
				}
				var buf bytes.Buffer
				if err := graph.Export(ctx, &buf); err != nil {
					return err
				}
				return atomic.WriteFile(args[0], &buf)
			})
		},
	}
}

func newDepsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON graph written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func(f *os.File) {
				_ = f.Close()
			}(f)
			return a.withGraph(cmd.Context(), func(ctx context.Context, graph *depgraph.Graph) error {
				return graph.Import(ctx, f)
			})
		},
	}
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
