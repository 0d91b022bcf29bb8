package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/seanpol/ifdif/product"
	"github.com/seanpol/ifdif/query"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var queries []string

	cmd := &cobra.Command{
		Use:   "query FIRST SECOND",
		Short: "evaluate one or more modal-logic formulas against two policies' product graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1], queries)
		},
	}
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "a modal-logic formula to evaluate (repeatable)")
	cmd.MarkFlagRequired("query")

	return cmd
}

func runQuery(cmd *cobra.Command, first, second string, queries []string) error {
	log := slog.With("component", "query")

	pm, err := loadPermmap()
	if err != nil {
		return err
	}

	left, err := loadPolicyAt(first, pm)
	if err != nil {
		return fmt.Errorf("loading %q: %w", first, err)
	}
	right, err := loadPolicyAt(second, pm)
	if err != nil {
		return fmt.Errorf("loading %q: %w", second, err)
	}

	g, err := product.Build(cmd.Context(), left, right, cfg.Concurrency)
	if err != nil {
		return err
	}
	log.Info("built product graph", "nodes", g.NumNodes())

	for _, src := range queries {
		f, err := query.Parse(src)
		if err != nil {
			return err
		}
		result, err := query.Eval(cmd.Context(), f, g, left, right)
		if err != nil {
			return err
		}
		printResult(src, result, g)
	}

	return nil
}

func printResult(src string, result product.NodeSet, g *product.Graph) {
	nodes := make([]product.Node, 0, len(result))
	for idx := range result {
		nodes = append(nodes, g.NodeAt(idx))
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Left != nodes[j].Left {
			return nodes[i].Left < nodes[j].Left
		}
		return nodes[i].Right < nodes[j].Right
	})

	fmt.Printf("%s\n", src)
	for _, n := range nodes {
		fmt.Printf("  %s\n", n.String())
	}
}
