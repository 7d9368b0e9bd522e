package cli

// Notes:
// - PrintResults: we verify routing (failures to stderr, successes to
//   stdout), the quiet/verbose switches, and the batch summary threshold.
// - Durations use whole milliseconds so the rounded timing is predictable.

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// testEnv returns an Environment with buffered writers for assertions.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestDefaultEnv - Production environment wiring
// ---------------------------------------------------------------------------

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	t.Run("Now returns real time", func(t *testing.T) {
		before := time.Now()
		got := env.Now()
		after := time.Now()

		if got.Before(before) || got.After(after) {
			t.Errorf("Now() = %v, should be between %v and %v", got, before, after)
		}
	})

	t.Run("Stdout is os.Stdout", func(t *testing.T) {
		if env.Stdout != os.Stdout {
			t.Error("Stdout should be os.Stdout")
		}
	})

	t.Run("Stderr is os.Stderr", func(t *testing.T) {
		if env.Stderr != os.Stderr {
			t.Error("Stderr should be os.Stderr")
		}
	})
}

// ---------------------------------------------------------------------------
// TestCountResults - Success and failure tallies
// ---------------------------------------------------------------------------

func TestCountResults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		results []Result
		want    Summary
	}{
		{
			name:    "empty",
			results: nil,
			want:    Summary{},
		},
		{
			name: "all succeed",
			results: []Result{
				{InputPath: "a.Rmd"},
				{InputPath: "b.Rmd"},
			},
			want: Summary{Succeeded: 2},
		},
		{
			name: "all fail",
			results: []Result{
				{InputPath: "a.Rmd", Err: errors.New("boom")},
			},
			want: Summary{Failed: 1},
		},
		{
			name: "mixed",
			results: []Result{
				{InputPath: "a.Rmd"},
				{InputPath: "b.Rmd", Err: errors.New("boom")},
				{InputPath: "c.Rmd"},
			},
			want: Summary{Succeeded: 2, Failed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CountResults(tt.results)
			if got != tt.want {
				t.Errorf("CountResults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Output routing and formatting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	t.Run("success prints Created line", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := testEnv()

		results := []Result{{InputPath: "intro.Rmd", OutputPath: "intro.ptx"}}
		failed := PrintResults(results, false, false, env)

		if failed != 0 {
			t.Errorf("failed = %d, want 0", failed)
		}
		if got := stdout.String(); got != "Created intro.ptx\n" {
			t.Errorf("stdout = %q, want %q", got, "Created intro.ptx\n")
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr = %q, want empty", stderr.String())
		}
	})

	t.Run("quiet suppresses success lines", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{{InputPath: "intro.Rmd", OutputPath: "intro.ptx"}}
		PrintResults(results, true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})

	t.Run("verbose shows timing", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{{
			InputPath:  "intro.Rmd",
			OutputPath: "intro.ptx",
			Duration:   250 * time.Millisecond,
		}}
		PrintResults(results, false, true, env)

		want := "intro.Rmd -> intro.ptx (250ms)\n"
		if got := stdout.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("verbose prints detail line", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{{
			InputPath:  "anova.ptx",
			OutputPath: "anova.ptx",
			Detail:     "3 runs, 2 spliced, 1 already spliced",
		}}
		PrintResults(results, false, true, env)

		if !strings.Contains(stdout.String(), "  3 runs, 2 spliced, 1 already spliced\n") {
			t.Errorf("stdout = %q, want detail line", stdout.String())
		}
	})

	t.Run("failure goes to stderr", func(t *testing.T) {
		t.Parallel()
		env, stdout, stderr := testEnv()

		results := []Result{{InputPath: "bad.Rmd", Err: errors.New("boom")}}
		failed := PrintResults(results, false, false, env)

		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if got := stderr.String(); got != "FAILED bad.Rmd: boom\n" {
			t.Errorf("stderr = %q, want %q", got, "FAILED bad.Rmd: boom\n")
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})

	t.Run("quiet keeps failures visible", func(t *testing.T) {
		t.Parallel()
		env, _, stderr := testEnv()

		results := []Result{{InputPath: "bad.Rmd", Err: errors.New("boom")}}
		PrintResults(results, true, false, env)

		if !strings.Contains(stderr.String(), "FAILED bad.Rmd") {
			t.Errorf("stderr = %q, want FAILED line", stderr.String())
		}
	})

	t.Run("summary printed for multiple results", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{
			{InputPath: "a.Rmd", OutputPath: "a.ptx"},
			{InputPath: "b.Rmd", Err: errors.New("boom")},
		}
		PrintResults(results, false, false, env)

		if !strings.Contains(stdout.String(), "\n1 succeeded, 1 failed\n") {
			t.Errorf("stdout = %q, want summary line", stdout.String())
		}
	})

	t.Run("no summary for single result", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{{InputPath: "a.Rmd", OutputPath: "a.ptx"}}
		PrintResults(results, false, false, env)

		if strings.Contains(stdout.String(), "succeeded") {
			t.Errorf("stdout = %q, want no summary", stdout.String())
		}
	})

	t.Run("no summary under quiet", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()

		results := []Result{
			{InputPath: "a.Rmd", OutputPath: "a.ptx"},
			{InputPath: "b.Rmd", OutputPath: "b.ptx"},
		}
		PrintResults(results, true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})
}
