package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
	"github.com/statpress/go-rmd2ptx/internal/cli"
	"github.com/statpress/go-rmd2ptx/internal/config"
	"github.com/statpress/go-rmd2ptx/internal/fileutil"
	"github.com/statpress/go-rmd2ptx/internal/logging"
)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire() *rmd2ptx.Service
	Release(*rmd2ptx.Service)
	Size() int
}

// Compile-time check that the library pool implements Pool.
var _ Pool = (*rmd2ptx.ServicePool)(nil)

// FileToConvert represents a single chapter to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Meta       rmd2ptx.ChapterMeta
}

// runConvert orchestrates the conversion: resolve the manifest and flags,
// build the worker pool, convert, and report.
func runConvert(ctx context.Context, args []string, flags *convertFlags, poolSize int, env *cli.Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override manifest conventions.
	mergeConventionFlags(flags, cfg)

	opts, err := buildOptions(cfg, flags)
	if err != nil {
		return err
	}

	files, err := resolveFiles(args, flags, cfg)
	if err != nil {
		return err
	}

	pool := rmd2ptx.NewServicePool(poolSize, opts...)
	results := convertBatch(ctx, pool, files)

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

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: worker count %d (must be >= 0, 0 means auto)", cli.ErrUsage, n)
	}
	if n > rmd2ptx.MaxPoolSize {
		return fmt.Errorf("%w: worker count %d (maximum is %d)", cli.ErrUsage, n, rmd2ptx.MaxPoolSize)
	}
	return nil
}

// mergeConventionFlags merges CLI convention flags into the manifest.
// CLI values override manifest values.
func mergeConventionFlags(flags *convertFlags, cfg *config.Config) {
	if flags.conventions.language != "" {
		cfg.Convert.Language = flags.conventions.language
	}
	if flags.conventions.figurePrefix != "" {
		cfg.Convert.FigurePrefix = flags.conventions.figurePrefix
	}
	if flags.conventions.tablePrefix != "" {
		cfg.Convert.TablePrefix = flags.conventions.tablePrefix
	}
	if flags.conventions.imageDir != "" {
		cfg.Convert.ImageDir = flags.conventions.imageDir
	}
	if flags.conventions.generatedDir != "" {
		cfg.Convert.GeneratedDir = flags.conventions.generatedDir
	}
	if flags.conventions.imageWidth != "" {
		cfg.Convert.ImageWidth = flags.conventions.imageWidth
	}
}

// buildOptions turns manifest conventions and CLI flags into service options.
func buildOptions(cfg *config.Config, flags *convertFlags) ([]rmd2ptx.Option, error) {
	var opts []rmd2ptx.Option

	if cfg.Convert.Language != "" {
		opts = append(opts, rmd2ptx.WithLanguage(cfg.Convert.Language))
	}
	if cfg.Convert.FigurePrefix != "" {
		opts = append(opts, rmd2ptx.WithFigurePrefix(cfg.Convert.FigurePrefix))
	}
	if cfg.Convert.TablePrefix != "" {
		opts = append(opts, rmd2ptx.WithTablePrefix(cfg.Convert.TablePrefix))
	}
	if cfg.Convert.ImageDir != "" {
		opts = append(opts, rmd2ptx.WithImageDir(cfg.Convert.ImageDir))
	}
	if cfg.Convert.GeneratedDir != "" {
		opts = append(opts, rmd2ptx.WithGeneratedDir(cfg.Convert.GeneratedDir))
	}
	if cfg.Convert.ImageWidth != "" {
		opts = append(opts, rmd2ptx.WithImageWidth(cfg.Convert.ImageWidth))
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: invalid timeout %q", cli.ErrUsage, flags.timeout)
		}
		opts = append(opts, rmd2ptx.WithTimeout(d))
	}

	return opts, nil
}

// resolveFiles determines the chapters to convert. Two positional args name
// one source/output pair; zero args walk the manifest. Anything else is a
// usage error.
func resolveFiles(args []string, flags *convertFlags, cfg *config.Config) ([]FileToConvert, error) {
	switch len(args) {
	case 2:
		return []FileToConvert{{
			InputPath:  args[0],
			OutputPath: args[1],
			Meta:       rmd2ptx.ChapterMeta{ID: flags.meta.id, Title: flags.meta.title},
		}}, nil
	case 0:
		return manifestFiles(flags, cfg)
	default:
		return nil, fmt.Errorf("%w: expected <chapter.Rmd> <chapter.ptx> or no arguments for manifest mode", cli.ErrUsage)
	}
}

// manifestFiles expands the manifest chapter table, optionally filtered to a
// single chapter id.
func manifestFiles(flags *convertFlags, cfg *config.Config) ([]FileToConvert, error) {
	chapters := cfg.Chapters
	if flags.chapter != "" {
		ch, err := cfg.FindChapter(flags.chapter)
		if err != nil {
			return nil, err
		}
		chapters = []config.Chapter{ch}
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no chapters", cli.ErrNoInput)
	}

	files := make([]FileToConvert, len(chapters))
	for i, ch := range chapters {
		files[i] = FileToConvert{
			InputPath:  cfg.RmdPath(ch),
			OutputPath: cfg.PtxPath(ch),
			Meta:       rmd2ptx.ChapterMeta{ID: ch.ID, Title: ch.Title},
		}
	}
	return files, nil
}

// convertBatch processes chapters concurrently using the service pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert) []cli.Result {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]cli.Result, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = cli.Result{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				r := convertFile(ctx, svc, files[idx])
				if r.Err != nil {
					logging.DocumentFailed(r.InputPath, r.Err)
				}
				results[idx] = r
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single chapter and returns the result.
func convertFile(ctx context.Context, svc *rmd2ptx.Service, f FileToConvert) cli.Result {
	start := time.Now()
	result := cli.Result{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- manifest or user-provided path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", cli.ErrReadSource, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := svc.Convert(ctx, rmd2ptx.Input{
		Source: string(content),
		Meta:   f.Meta,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if n := len(res.Stats.RenamedIDs); n > 0 {
		logging.Warn("duplicate_ids_renamed",
			"input", f.InputPath,
			"count", n,
			"ids", strings.Join(res.Stats.RenamedIDs, ", "))
	}

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, cli.DirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(f.OutputPath, res.PTX, cli.FilePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", cli.ErrWriteOutput, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Detail = res.Stats.String()
	result.Duration = time.Since(start)
	logging.DocumentConverted(f.InputPath, f.OutputPath, result.Duration)
	return result
}
