package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hightemp/flagpic/internal/batch"
	"github.com/hightemp/flagpic/internal/compose"
	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/countries"
	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagstore"
	"github.com/hightemp/flagpic/internal/logger"
	"github.com/hightemp/flagpic/internal/output"
	"github.com/hightemp/flagpic/internal/watch"
)

type generateFlags struct {
	countriesFile string
	all           bool
	outputDir     string
	template      string
	concurrency   int
	noProgress    bool
	noManifest    bool
	watch         bool
}

func newGenerateCmd(opts *options) *cobra.Command {
	gf := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate [codes...]",
		Short: "Generate flag profile pictures",
		Long: `Composes the matching flag of each country under the profile-picture
template and writes <output-dir>/<code>.png.

Codes are taken from the arguments, from --countries-file, from stdin,
or with --all from the full ISO 3166 list.

Examples:
  flagpic generate de fr it
  flagpic generate --countries-file codes.txt
  flagpic generate --all --store remote --concurrency 8
  flagpic generate --all --watch      # regenerate when flags or the template change`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			f := cmd.Flags()
			if f.Changed("output-dir") {
				cfg.OutputDir = gf.outputDir
			}
			if f.Changed("template") {
				cfg.Template = gf.template
			}
			if f.Changed("concurrency") {
				cfg.Concurrency = gf.concurrency
			}

			codes, err := generateCodes(cmd, gf, args)
			if err != nil {
				return err
			}
			if codes == nil {
				return cmd.Help()
			}

			if !gf.watch {
				return runGenerate(cmd.Context(), cmd, opts, gf, codes)
			}
			if err := checkWatch(cfg); err != nil {
				return withExitCode(ExitInvalidInput, err)
			}
			if err := runGenerate(cmd.Context(), cmd, opts, gf, codes); err != nil {
				logger.WithError(err).Warn("initial generation incomplete")
			}

			w := watch.New(watch.DefaultDelay, watchFilter(cfg.Template, cfg.OutputDir))
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", cfg.FlagsDir)
			return w.Run(cmd.Context(), []string{cfg.FlagsDir, filepath.Dir(cfg.Template)}, func(ctx context.Context, changed []string) error {
				logger.Info("regenerating", "changed", changed)
				return runGenerate(ctx, cmd, opts, gf, codes)
			})
		},
	}

	cmd.Flags().StringVar(&gf.countriesFile, "countries-file", "", "file with country codes (one per line)")
	cmd.Flags().BoolVar(&gf.all, "all", false, "generate for every ISO 3166 country")
	cmd.Flags().StringVarP(&gf.outputDir, "output-dir", "o", "", "output directory (default from config: profilepics)")
	cmd.Flags().StringVar(&gf.template, "template", "", "profile-picture template PNG")
	cmd.Flags().IntVar(&gf.concurrency, "concurrency", 0, "parallel workers (max 16)")
	cmd.Flags().BoolVar(&gf.noProgress, "no-progress", false, "do not show a progress line")
	cmd.Flags().BoolVar(&gf.noManifest, "no-manifest", false, "do not write "+config.ManifestFileName)
	cmd.Flags().BoolVar(&gf.watch, "watch", false, "keep running and regenerate when flags or the template change")
	return cmd
}

// generateCodes returns the codes to process, or nil when none were given.
func generateCodes(cmd *cobra.Command, gf *generateFlags, args []string) ([]string, error) {
	switch {
	case len(args) > 0:
		return args, nil
	case gf.countriesFile != "":
		content, err := os.ReadFile(gf.countriesFile)
		if err != nil {
			return nil, withExitCode(ExitInvalidInput, fmt.Errorf("read countries file: %w", err))
		}
		codes, err := countries.LoadFromFile(string(content))
		if err != nil {
			return nil, withExitCode(ExitInvalidInput, fmt.Errorf("parse countries file: %w", err))
		}
		return codes, nil
	case gf.all:
		return countries.AllCodesLower(), nil
	case isBatchMode(cmd.InOrStdin()):
		codes, err := batch.ReadCodes(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return nil, withExitCode(ExitInvalidInput, fmt.Errorf("no country codes given"))
		}
		return codes, nil
	default:
		return nil, nil
	}
}

// runGenerate opens the store and template, generates every code and prints the
// results. The store is reopened on each call so that a changed flag directory
// is picked up.
func runGenerate(ctx context.Context, cmd *cobra.Command, opts *options, gf *generateFlags, codes []string) error {
	cfg := opts.cfg

	store, err := flagstore.New(cfg)
	if err != nil {
		return withExitCode(exitCodeFor(err), err)
	}
	defer closeStore(store)

	composer, err := compose.FromConfig(cfg)
	if err != nil {
		return withExitCode(ExitConfig, err)
	}

	progress := output.NewProgress(cmd.ErrOrStderr(), len(codes))
	if gf.noProgress {
		progress.Enable(false)
	}
	gen := batch.NewGenerator(countryinfo.NewCLDR(), store, composer, cfg.OutputDir,
		batch.WithConcurrency(cfg.Concurrency),
		batch.WithProgress(func(r *output.GenerateResult) { progress.Step(r.Code) }),
	)

	result, err := gen.Generate(ctx, codes)
	progress.Done()
	if err != nil && result == nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		jsonStr, jerr := result.FormatJSON()
		if jerr != nil {
			return jerr
		}
		fmt.Fprintln(out, jsonStr)
	} else {
		fmt.Fprintln(out, result.FormatText())
	}
	fmt.Fprintln(cmd.ErrOrStderr(), result.Summary())

	if !gf.noManifest {
		manifest := batch.NewManifest(string(store.Kind()), cfg.Template, result)
		if prev, perr := batch.LoadManifest(filepath.Join(cfg.OutputDir, config.ManifestFileName)); perr == nil {
			manifest.PreviousRunID = prev.RunID
		}
		if merr := manifest.Save(cfg.OutputDir, config.ManifestFileName); merr != nil {
			logger.WithError(merr).Warn("could not write manifest", "dir", cfg.OutputDir)
		}
	}

	if err != nil {
		return err
	}
	if result.Failed() > 0 {
		return withExitCode(ExitGenerateFailed, fmt.Errorf("%d of %d codes failed", result.Failed(), len(result.Results)))
	}
	return nil
}

// isBatchMode reports whether codes should be read from in. A terminal is not
// batch input; pipes, files and any non-file reader are.
func isBatchMode(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return in != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// checkWatch rejects watch configurations that would regenerate forever.
func checkWatch(cfg *config.Config) error {
	if kind, err := flagstore.ParseKind(cfg.Store); err != nil || kind != flagstore.KindLocal {
		return fmt.Errorf("--watch needs the local flag store")
	}
	out := absPath(cfg.OutputDir)
	if out == absPath(cfg.FlagsDir) {
		return fmt.Errorf("--watch: output directory %s is the flags directory", cfg.OutputDir)
	}
	return nil
}

// watchFilter selects the events that trigger a regeneration: the template
// itself and any visible PNG outside the output directory.
func watchFilter(template, outputDir string) func(string) bool {
	template = absPath(template)
	outputDir = absPath(outputDir)
	return func(path string) bool {
		if path == template {
			return true
		}
		if filepath.Dir(path) == outputDir {
			return false
		}
		return strings.EqualFold(filepath.Ext(path), ".png") && !strings.HasPrefix(filepath.Base(path), ".")
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
