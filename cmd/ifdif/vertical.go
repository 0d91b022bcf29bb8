package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/seanpol/ifdif/policy"
	"github.com/seanpol/ifdif/product"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newVerticalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertical VENDOR [DEVICE]",
		Short: "compare policies of the same vendor/device",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vendor := args[0]
			device := ""
			if len(args) == 2 {
				device = args[1]
			}
			return runVertical(cmd, vendor, device)
		},
	}
	return cmd
}

func runVertical(cmd *cobra.Command, vendor, device string) error {
	log := slog.With("component", "vertical")
	log.Info("starting vertical comparison of the specified policies")

	root := resolvePolicyRoot(vendor, device)
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading policy root %q: %w", root, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			paths = append(paths, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(paths)
	log.Info("found policies", "count", len(paths))

	pm, err := loadPermmap()
	if err != nil {
		return err
	}

	policies := make([]*policy.Policy, len(paths))
	var eg errgroup.Group
	eg.SetLimit(cfg.Concurrency)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			p, err := loadPolicyAt(path, pm)
			if err != nil {
				return fmt.Errorf("loading policy %q: %w", path, err)
			}
			policies[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	sort.Slice(policies, func(i, j int) bool {
		return policies[i].Properties.VersionIncr < policies[j].Properties.VersionIncr
	})

	log.Info("ordering policies for vertical comparison")
	for i, p := range policies {
		log.Info(fmt.Sprintf("#%d: %s %s", i+1, p.Name(), p.Properties.VersionString()))
	}

	log.Info("stage 1 - file context changes")
	for i := 0; i < len(policies)-1; i++ {
		result, err := policies[i].FCDiff(policies[i+1])
		if err != nil {
			return fmt.Errorf("fc_diff #%d -> #%d: %w", i+1, i+2, err)
		}
		if len(result.Delta) > 0 {
			log.Info(fmt.Sprintf("#%d --> #%d (-%d, +%d)", i+1, i+2, result.Removed, result.Added))
			for _, line := range result.Delta {
				log.Debug(line)
			}
		}
	}

	log.Info("stage 2 - type changes")
	for i := 0; i < len(policies)-1; i++ {
		diff := policies[i].TypeDiff(policies[i+1])
		if len(diff.NodesOnlySelf) > 0 || len(diff.NodesOnlyOther) > 0 || len(diff.EdgesOnlySelf) > 0 || len(diff.EdgesOnlyOther) > 0 {
			log.Info(fmt.Sprintf("#%d --> #%d nodes (-%d, +%d) edges (-%d, +%d)", i+1, i+2,
				len(diff.NodesOnlySelf), len(diff.NodesOnlyOther), len(diff.EdgesOnlySelf), len(diff.EdgesOnlyOther)))
			for _, n := range diff.NodesOnlySelf {
				log.Debug("- " + n)
			}
			for _, n := range diff.NodesOnlyOther {
				log.Debug("+ " + n)
			}
		}
	}

	log.Info("stage 3 - security level changes")
	for i := 0; i < len(policies)-1; i++ {
		diffs, nfa, err := policies[i].SecurityLvsDiff(policies[i+1])
		if err != nil {
			return fmt.Errorf("security_lvs_diff #%d -> #%d: %w", i+1, i+2, err)
		}
		if len(diffs) != 0 {
			log.Info(fmt.Sprintf("#%d --> #%d newly exposed: %v", i+1, i+2, diffs))
		}
		if !nfa.IsEmpty() {
			log.Info(fmt.Sprintf("#%d --> #%d newly exposed file paths detected", i+1, i+2))
		}
	}

	log.Info("stage 4 - fc security changes")
	for i := 0; i < len(policies)-1; i++ {
		prod, err := product.Build(cmd.Context(), policies[i], policies[i+1], cfg.Concurrency)
		if err != nil {
			return fmt.Errorf("building product graph #%d -> #%d: %w", i+1, i+2, err)
		}
		log.Info(fmt.Sprintf("#%d --> #%d product graph: %d nodes", i+1, i+2, prod.NumNodes()))
	}

	return nil
}
