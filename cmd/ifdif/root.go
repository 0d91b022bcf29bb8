package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seanpol/ifdif/config"
	"github.com/seanpol/ifdif/permmap"
	"github.com/seanpol/ifdif/policy"
	"github.com/seanpol/ifdif/policy/textdecoder"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	extracted   bool
	permmapPath string
	saveCache   bool
	loadCache   bool
	configPath  string

	logLevel = new(slog.LevelVar)
	cfg      config.Config
)

// extractedRoot is the base directory vertical/-e policy names are
// resolved under, matching the original's _extracted_path.
const extractedRoot = "android-extract/policies"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ifdif",
		Short:         "Evaluates SEAndroid policies for information-flow regressions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadGlobalConfig(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "prints debug info")
	root.PersistentFlags().BoolVarP(&extracted, "extracted", "e", false, "assume policies are from extracted folder")
	root.PersistentFlags().StringVarP(&permmapPath, "permmap", "m", "", "the path of the permission map to use")
	root.PersistentFlags().BoolVarP(&saveCache, "save", "s", false, "file contexts are saved to db")
	root.PersistentFlags().BoolVarP(&loadCache, "load", "l", false, "attempt to load file contexts from db; load from files and save otherwise")
	root.PersistentFlags().StringVar(&configPath, "config", "./ifdif.yaml", "path to a YAML defaults file")
	root.MarkFlagsMutuallyExclusive("save", "load")

	root.AddCommand(newVerticalCmd())
	root.AddCommand(newPolicyCmd())
	root.AddCommand(newQueryCmd())

	return root
}

// loadGlobalConfig reads --config and lets it seed any of the flags above
// the user didn't pass explicitly, per SPEC_FULL.md §6. Explicit flags
// always win over the file.
func loadGlobalConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("verbose") {
		verbose = cfg.Verbose
	}
	if !flags.Changed("extracted") {
		extracted = cfg.Extracted
	}
	if !flags.Changed("permmap") && cfg.Permmap != "" {
		permmapPath = cfg.Permmap
	}
	if !flags.Changed("save") {
		saveCache = cfg.Save
	}
	if !flags.Changed("load") {
		loadCache = cfg.Load
	}

	if verbose {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelInfo)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	return nil
}

func loadPermmap() (*permmap.Map, error) {
	if permmapPath == "" {
		return permmap.Empty(), nil
	}
	return permmap.LoadFile(permmapPath)
}

// fcFilesIn returns every *_file_contexts file directly under dir, the
// fixed set of file-context sources a policy snapshot carries per spec.md §6.
func fcFilesIn(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_file_contexts"))
	if err != nil {
		return nil, fmt.Errorf("globbing file contexts in %q: %w", dir, err)
	}
	return matches, nil
}

// loadPolicyAt loads one policy snapshot from dir through the textdecoder,
// honoring --save/--load's cache contract.
func loadPolicyAt(dir string, pm *permmap.Map) (*policy.Policy, error) {
	fcFiles, err := fcFilesIn(dir)
	if err != nil {
		return nil, err
	}
	decoder := textdecoder.Decoder{Dir: dir}
	return policy.LoadWithCache(dir, decoder, pm, fcFiles, loadCache, saveCache)
}

// resolvePolicyRoot mirrors the original's vertical_mode path resolution:
// plain paths are used as-is, but under --extracted the vendor (and
// optional device) arguments are resolved under extractedRoot.
func resolvePolicyRoot(vendor, device string) string {
	if !extracted {
		return vendor
	}
	if device != "" {
		return filepath.Join(extractedRoot, vendor, device)
	}
	return filepath.Join(extractedRoot, vendor)
}
