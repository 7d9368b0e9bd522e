package main

// Notes:
// - validateWorkers/buildOptions/resolveFiles/manifestFiles: pure functions
//   tested against in-memory configs.
// - convertFile/runConvert: end-to-end against t.TempDir() fixtures; we verify
//   file contents and error propagation, not log output.
// - Conversion semantics (headings, fences, math) belong to the library tests;
//   here a minimal chapter is enough.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rmd2ptx "github.com/statpress/go-rmd2ptx"
	"github.com/statpress/go-rmd2ptx/internal/cli"
	"github.com/statpress/go-rmd2ptx/internal/config"
)

// testSource is a minimal chapter that converts cleanly.
const testSource = "# Getting started {#ch-start}\n\n" +
	"A paragraph with *emphasis*.\n\n" +
	"```{r}\nlibrary(lsr)\n```\n"

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func testEnv() (*cli.Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &cli.Environment{Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestValidateWorkers - worker count bounds
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		wantErr bool
	}{
		{name: "auto", workers: 0},
		{name: "one", workers: 1},
		{name: "maximum", workers: rmd2ptx.MaxPoolSize},
		{name: "negative", workers: -1, wantErr: true},
		{name: "above maximum", workers: rmd2ptx.MaxPoolSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateWorkers(tt.workers)
			if tt.wantErr {
				if !errors.Is(err, cli.ErrUsage) {
					t.Errorf("error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeConventionFlags - CLI overrides
// ---------------------------------------------------------------------------

func TestMergeConventionFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags override manifest conventions", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		flags := &convertFlags{conventions: conventionFlags{
			language:     "python",
			figurePrefix: "figure-",
			imageWidth:   "60%",
		}}
		mergeConventionFlags(flags, cfg)

		if cfg.Convert.Language != "python" {
			t.Errorf("Language = %q, want %q", cfg.Convert.Language, "python")
		}
		if cfg.Convert.FigurePrefix != "figure-" {
			t.Errorf("FigurePrefix = %q, want %q", cfg.Convert.FigurePrefix, "figure-")
		}
		if cfg.Convert.ImageWidth != "60%" {
			t.Errorf("ImageWidth = %q, want %q", cfg.Convert.ImageWidth, "60%")
		}
	})

	t.Run("empty flags keep manifest values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeConventionFlags(&convertFlags{}, cfg)

		if cfg.Convert.Language != "r" {
			t.Errorf("Language = %q, want %q", cfg.Convert.Language, "r")
		}
		if cfg.Convert.TablePrefix != "table-" {
			t.Errorf("TablePrefix = %q, want %q", cfg.Convert.TablePrefix, "table-")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildOptions - timeout parsing
// ---------------------------------------------------------------------------

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	t.Run("valid timeout", func(t *testing.T) {
		t.Parallel()

		opts, err := buildOptions(config.DefaultConfig(), &convertFlags{timeout: "30s"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(opts) == 0 {
			t.Error("expected options from the default conventions")
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		_, err := buildOptions(config.DefaultConfig(), &convertFlags{timeout: "soon"})
		if !errors.Is(err, cli.ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("negative timeout", func(t *testing.T) {
		t.Parallel()

		_, err := buildOptions(config.DefaultConfig(), &convertFlags{timeout: "-5s"})
		if !errors.Is(err, cli.ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveFiles - argument arity and manifest expansion
// ---------------------------------------------------------------------------

func manifestConfig() *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{
			SourceDir: "src",
			OutputDir: "out",
		},
		Chapters: []config.Chapter{
			{ID: "ch-one", Title: "One", Rmd: "one.Rmd", Ptx: "one.ptx"},
			{ID: "ch-two", Title: "Two", Rmd: "two.Rmd", Ptx: "two.ptx"},
		},
	}
}

func TestResolveFiles(t *testing.T) {
	t.Parallel()

	t.Run("pair carries identity flags", func(t *testing.T) {
		t.Parallel()

		flags := &convertFlags{meta: metaFlags{id: "ch-x", title: "X"}}
		files, err := resolveFiles([]string{"in.Rmd", "out.ptx"}, flags, manifestConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("got %d files, want 1", len(files))
		}
		f := files[0]
		if f.InputPath != "in.Rmd" || f.OutputPath != "out.ptx" {
			t.Errorf("paths = %+v", f)
		}
		if f.Meta.ID != "ch-x" || f.Meta.Title != "X" {
			t.Errorf("meta = %+v", f.Meta)
		}
	})

	t.Run("single positional is a usage error", func(t *testing.T) {
		t.Parallel()

		_, err := resolveFiles([]string{"in.Rmd"}, &convertFlags{}, manifestConfig())
		if !errors.Is(err, cli.ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("manifest mode expands every chapter", func(t *testing.T) {
		t.Parallel()

		files, err := resolveFiles(nil, &convertFlags{}, manifestConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("got %d files, want 2", len(files))
		}
		want := FileToConvert{
			InputPath:  filepath.Join("src", "one.Rmd"),
			OutputPath: filepath.Join("out", "one.ptx"),
			Meta:       rmd2ptx.ChapterMeta{ID: "ch-one", Title: "One"},
		}
		if files[0] != want {
			t.Errorf("files[0] = %+v, want %+v", files[0], want)
		}
	})
}

func TestManifestFiles(t *testing.T) {
	t.Parallel()

	t.Run("chapter filter selects one chapter", func(t *testing.T) {
		t.Parallel()

		files, err := manifestFiles(&convertFlags{chapter: "ch-two"}, manifestConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || files[0].Meta.ID != "ch-two" {
			t.Errorf("files = %+v", files)
		}
	})

	t.Run("unknown chapter id", func(t *testing.T) {
		t.Parallel()

		_, err := manifestFiles(&convertFlags{chapter: "nope"}, manifestConfig())
		if !errors.Is(err, config.ErrUnknownChapter) {
			t.Errorf("error = %v, want ErrUnknownChapter", err)
		}
	})

	t.Run("empty manifest", func(t *testing.T) {
		t.Parallel()

		cfg := manifestConfig()
		cfg.Chapters = nil
		_, err := manifestFiles(&convertFlags{}, cfg)
		if !errors.Is(err, cli.ErrNoInput) {
			t.Errorf("error = %v, want ErrNoInput", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertFile - single document processing
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFixture(t, dir, "ch.Rmd", testSource)
	output := filepath.Join(dir, "nested", "ch.ptx")

	svc := rmd2ptx.New()
	result := convertFile(context.Background(), svc, FileToConvert{
		InputPath:  input,
		OutputPath: output,
	})
	if result.Err != nil {
		t.Fatalf("convertFile() error = %v", result.Err)
	}
	if result.Detail == "" {
		t.Error("Detail should carry the conversion stats")
	}

	ptx, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, want := range []string{`<chapter xml:id="ch-start"`, "<em>emphasis</em>", `<program language="r">`} {
		if !strings.Contains(string(ptx), want) {
			t.Errorf("output should contain %q\n%s", want, ptx)
		}
	}
}

func TestConvertFileMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc := rmd2ptx.New()
	result := convertFile(context.Background(), svc, FileToConvert{
		InputPath:  filepath.Join(dir, "missing.Rmd"),
		OutputPath: filepath.Join(dir, "out.ptx"),
	})
	if !errors.Is(result.Err, cli.ErrReadSource) {
		t.Errorf("error = %v, want ErrReadSource", result.Err)
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert - full driver
// ---------------------------------------------------------------------------

func TestRunConvertPairMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFixture(t, dir, "ch.Rmd", testSource)
	output := filepath.Join(dir, "ch.ptx")

	env, stdout, _ := testEnv()
	err := runConvert(context.Background(), []string{input, output}, &convertFlags{}, 1, env)
	if err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Created "+output) {
		t.Errorf("stdout = %q, want Created line", stdout.String())
	}
}

func TestRunConvertSingleFailurePropagates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFixture(t, dir, "broken.Rmd", "# T {#t}\n\n```{r}\nunclosed\n")
	output := filepath.Join(dir, "broken.ptx")

	env, _, stderr := testEnv()
	err := runConvert(context.Background(), []string{input, output}, &convertFlags{}, 1, env)
	if !errors.Is(err, rmd2ptx.ErrUnclosedFence) {
		t.Fatalf("error = %v, want ErrUnclosedFence", err)
	}
	if !strings.Contains(stderr.String(), "FAILED") {
		t.Errorf("stderr = %q, want FAILED line", stderr.String())
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("failed conversion must not leave an output file")
	}
}

func TestRunConvertManifestMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(srcDir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, srcDir, "one.Rmd", "# One {#ch-one}\n\nFirst chapter.\n")
	writeFixture(t, srcDir, "two.Rmd", "# Two {#ch-two}\n\nSecond chapter.\n")

	manifest := fmt.Sprintf(`book:
  title: Test Book
paths:
  sourceDir: %s
  outputDir: %s
  renderedDir: %s
chapters:
  - id: ch-one
    title: One
    rmd: one.Rmd
    ptx: one.ptx
  - id: ch-two
    title: Two
    rmd: two.Rmd
    ptx: two.ptx
`, srcDir, outDir, dir)
	manifestPath := writeFixture(t, dir, "book.yaml", manifest)

	env, stdout, _ := testEnv()
	flags := &convertFlags{common: commonFlags{config: manifestPath}}
	if err := runConvert(context.Background(), nil, flags, 2, env); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary line", stdout.String())
	}
	for _, name := range []string{"one.ptx", "two.ptx"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestRunConvertMissingManifest(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv()
	flags := &convertFlags{common: commonFlags{config: filepath.Join(t.TempDir(), "absent.yaml")}}
	err := runConvert(context.Background(), nil, flags, 1, env)
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}

func TestConvertBatchCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := rmd2ptx.NewServicePool(1)
	files := []FileToConvert{{InputPath: "a.Rmd", OutputPath: "a.ptx"}}
	results := convertBatch(ctx, pool, files)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
}
