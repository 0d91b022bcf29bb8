package main

import (
	"fmt"
	"log/slog"

	"github.com/seanpol/ifdif/product"
	"github.com/seanpol/ifdif/query"
	"github.com/spf13/cobra"
)

// exampleQueries are the seven concrete modal-logic formulas the original's
// policy_mode runs against every compared pair, in the original's order.
var exampleQueries = []string{
	"label_2 (CRITICAL) and not label_1 (CRITICAL)",
	"ito_2(label_2(CRITICAL) and not ito_1(label_2(CRITICAL)))",
	"(label_2(UNTRUSTED) and ito_2(label_2(CRITICAL))) and not (label_2(UNTRUSTED) and ito_1(label_2(CRITICAL)))",
	"(label_2(UNTRUSTED) and ito_2(label_2(CRITICAL))) and not (label_1(UNTRUSTED) and ito_1(label_1(CRITICAL)))",
	"(label_2(UNTRUSTED) and ito_2(label_2(CRITICAL)) and label_1(UNTRUSTED)) and not ito_1(label_1(CRITICAL))",
	"(label_2(CRITICAL) and ifrom_2(label_2(UNTRUSTED))) and not (label_2(CRITICAL) and ifrom_1(label_2(UNTRUSTED)))",
	"(ito_2(label_2(CRITICAL)) and label_1(UNTRUSTED)) and not label_2(TRUSTED)",
}

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy FIRST SECOND",
		Short: "compare the two provided policies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(cmd, args[0], args[1])
		},
	}
}

func runPolicy(cmd *cobra.Command, first, second string) error {
	log := slog.With("component", "policy_mode")
	log.Info("starting comparison of the specified policies")

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

	for _, src := range exampleQueries {
		f, err := query.Parse(src)
		if err != nil {
			return err
		}
		result, err := query.Eval(cmd.Context(), f, g, left, right)
		if err != nil {
			return err
		}
		log.Debug(fmt.Sprintf("%q -> %d matching nodes", src, len(result)))
	}
	log.Info("performed queries", "count", len(exampleQueries))

	return nil
}
