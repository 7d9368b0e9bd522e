package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
	"github.com/statpress/go-rmd2ptx/internal/cli"
	"github.com/statpress/go-rmd2ptx/internal/config"
	"github.com/statpress/go-rmd2ptx/internal/fileutil"
	"github.com/statpress/go-rmd2ptx/internal/logging"
)

// FileToSplice represents a single chapter to process: the rendered bookdown
// page the output runs come from, the PreTeXt document they go into, and
// where the result is written. OutputPath equals MarkupPath except in pair
// mode with --output.
type FileToSplice struct {
	RenderedPath string
	MarkupPath   string
	OutputPath   string
}

// runSplice orchestrates the splice: resolve the manifest and flags, pair
// rendered pages with documents, splice, and report.
func runSplice(ctx context.Context, args []string, flags *spliceFlags, env *cli.Environment) error {
	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override manifest conventions.
	mergeSpliceFlags(flags, cfg)

	files, err := resolvePairs(args, flags, cfg)
	if err != nil {
		return err
	}

	splicer := rmd2ptx.NewSplicer(splicerOptions(cfg)...)
	results := spliceBatch(ctx, splicer, files)

	failed := cli.PrintResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		// A single document propagates its own error so the exit code
		// reflects the cause; batches collapse to a summary.
		if len(results) == 1 {
			return results[0].Err
		}
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return nil
}

// mergeSpliceFlags merges CLI splice flags into the manifest. CLI values
// override manifest values; --strict can only turn strict mode on.
func mergeSpliceFlags(flags *spliceFlags, cfg *config.Config) {
	if flags.marker != "" {
		cfg.Splice.Marker = flags.marker
	}
	if flags.language != "" {
		cfg.Convert.Language = flags.language
	}
	if flags.strict {
		cfg.Splice.Strict = true
	}
}

// splicerOptions turns manifest conventions into splicer options. The
// language comes from the converter conventions: the splicer targets the
// program elements the converter emitted.
func splicerOptions(cfg *config.Config) []rmd2ptx.SplicerOption {
	var opts []rmd2ptx.SplicerOption
	if cfg.Splice.Marker != "" {
		opts = append(opts, rmd2ptx.WithOutputMarker(cfg.Splice.Marker))
	}
	if cfg.Convert.Language != "" {
		opts = append(opts, rmd2ptx.WithSpliceLanguage(cfg.Convert.Language))
	}
	if cfg.Splice.Strict {
		opts = append(opts, rmd2ptx.WithStrict(true))
	}
	return opts
}

// resolvePairs determines the chapters to splice. Two positional args name
// one rendered/document pair; zero args walk the manifest, skipping chapters
// without a rendered page. Anything else is a usage error.
func resolvePairs(args []string, flags *spliceFlags, cfg *config.Config) ([]FileToSplice, error) {
	switch len(args) {
	case 2:
		output := flags.output
		if output == "" {
			output = args[1]
		}
		return []FileToSplice{{
			RenderedPath: args[0],
			MarkupPath:   args[1],
			OutputPath:   output,
		}}, nil
	case 0:
		if flags.output != "" {
			return nil, fmt.Errorf("%w: --output applies to pair mode only", cli.ErrUsage)
		}
		return manifestPairs(flags, cfg)
	default:
		return nil, fmt.Errorf("%w: expected <rendered.html> <chapter.ptx> or no arguments for manifest mode", cli.ErrUsage)
	}
}

// manifestPairs expands the manifest chapter table, optionally filtered to a
// single chapter id. Chapters without a rendered page are skipped in full
// manifest mode but rejected when named explicitly.
func manifestPairs(flags *spliceFlags, cfg *config.Config) ([]FileToSplice, error) {
	chapters := cfg.Chapters
	if flags.chapter != "" {
		ch, err := cfg.FindChapter(flags.chapter)
		if err != nil {
			return nil, err
		}
		if cfg.HTMLPath(ch) == "" {
			return nil, fmt.Errorf("%w: chapter %q has no rendered page in the manifest", cli.ErrNoInput, ch.ID)
		}
		chapters = []config.Chapter{ch}
	}

	var files []FileToSplice
	for _, ch := range chapters {
		rendered := cfg.HTMLPath(ch)
		if rendered == "" {
			logging.Info("chapter_skipped", "chapter", ch.ID, "reason", "no rendered page")
			continue
		}
		ptx := cfg.PtxPath(ch)
		files = append(files, FileToSplice{
			RenderedPath: rendered,
			MarkupPath:   ptx,
			OutputPath:   ptx,
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no manifest chapter has a rendered page", cli.ErrNoInput)
	}
	return files, nil
}

// spliceBatch processes chapters sequentially. Splicing is cheap relative to
// conversion; a worker pool buys nothing here.
func spliceBatch(ctx context.Context, splicer *rmd2ptx.Splicer, files []FileToSplice) []cli.Result {
	results := make([]cli.Result, len(files))
	for i, f := range files {
		if ctx.Err() != nil {
			results[i] = cli.Result{InputPath: f.RenderedPath, Err: ctx.Err()}
			continue
		}
		r := spliceFile(splicer, f)
		if r.Err != nil {
			logging.DocumentFailed(f.MarkupPath, r.Err)
		}
		results[i] = r
	}
	return results
}

// spliceFile processes a single chapter and returns the result.
func spliceFile(splicer *rmd2ptx.Splicer, f FileToSplice) cli.Result {
	start := time.Now()
	result := cli.Result{
		InputPath:  f.RenderedPath,
		OutputPath: f.OutputPath,
	}

	rendered, err := os.ReadFile(f.RenderedPath) // #nosec G304 -- manifest or user-provided path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", cli.ErrReadRendered, err)
		result.Duration = time.Since(start)
		return result
	}
	markup, err := os.ReadFile(f.MarkupPath) // #nosec G304 -- manifest or user-provided path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", cli.ErrReadSource, err)
		result.Duration = time.Since(start)
		return result
	}

	runs, err := splicer.ExtractRuns(rendered)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	if len(runs) == 0 {
		logging.Warn("no_output_runs", "rendered", f.RenderedPath)
	}

	spliced, stats, err := splicer.Splice(markup, runs)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, cli.DirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(f.OutputPath, spliced, cli.FilePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", cli.ErrWriteOutput, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Detail = stats.String()
	result.Duration = time.Since(start)
	logging.SpliceReport(f.MarkupPath, stats.Runs, stats.Programs, stats.Spliced, stats.Skipped)
	return result
}
