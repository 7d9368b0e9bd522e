package main

// Notes:
// - parseSpliceFlags: we test flag combinations including short/long forms,
//   boolean flags, value flags, and positional arguments.
// - We don't test flag.Parse() internals (pflag library responsibility).
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestParseSpliceFlags - CLI flag parsing
// ---------------------------------------------------------------------------

func TestParseSpliceFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		args           []string
		wantConfig     string
		wantChapter    string
		wantOutput     string
		wantMarker     string
		wantLanguage   string
		wantStrict     bool
		wantQuiet      bool
		wantVerbose    bool
		wantLogJSON    bool
		wantPositional []string
		wantErr        bool
	}{
		{
			name:           "no args",
			args:           []string{},
			wantPositional: []string{},
		},
		{
			name:           "pair of positionals",
			args:           []string{"regression.html", "ch12.ptx"},
			wantPositional: []string{"regression.html", "ch12.ptx"},
		},
		{
			name:           "config flag",
			args:           []string{"--config", "book"},
			wantConfig:     "book",
			wantPositional: []string{},
		},
		{
			name:           "config short flag",
			args:           []string{"-c", "book.yaml"},
			wantConfig:     "book.yaml",
			wantPositional: []string{},
		},
		{
			name:           "chapter filter",
			args:           []string{"--chapter", "anova"},
			wantChapter:    "anova",
			wantPositional: []string{},
		},
		{
			name:           "output short flag",
			args:           []string{"-o", "out.ptx", "page.html", "in.ptx"},
			wantOutput:     "out.ptx",
			wantPositional: []string{"page.html", "in.ptx"},
		},
		{
			name:           "marker convention",
			args:           []string{"--marker", "#>"},
			wantMarker:     "#>",
			wantPositional: []string{},
		},
		{
			name:           "language convention",
			args:           []string{"--language", "python"},
			wantLanguage:   "python",
			wantPositional: []string{},
		},
		{
			name:           "strict flag",
			args:           []string{"--strict"},
			wantStrict:     true,
			wantPositional: []string{},
		},
		{
			name:           "quiet and verbose short flags",
			args:           []string{"-q", "-v"},
			wantQuiet:      true,
			wantVerbose:    true,
			wantPositional: []string{},
		},
		{
			name:           "log-json flag",
			args:           []string{"--log-json"},
			wantLogJSON:    true,
			wantPositional: []string{},
		},
		{
			name:           "flags after positional arguments",
			args:           []string{"page.html", "in.ptx", "-v", "--strict"},
			wantVerbose:    true,
			wantStrict:     true,
			wantPositional: []string{"page.html", "in.ptx"},
		},
		{
			name:    "unknown flag returns error",
			args:    []string{"--unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags, positional, err := parseSpliceFlags(tt.args)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if flags.common.config != tt.wantConfig {
				t.Errorf("config = %q, want %q", flags.common.config, tt.wantConfig)
			}
			if flags.chapter != tt.wantChapter {
				t.Errorf("chapter = %q, want %q", flags.chapter, tt.wantChapter)
			}
			if flags.output != tt.wantOutput {
				t.Errorf("output = %q, want %q", flags.output, tt.wantOutput)
			}
			if flags.marker != tt.wantMarker {
				t.Errorf("marker = %q, want %q", flags.marker, tt.wantMarker)
			}
			if flags.language != tt.wantLanguage {
				t.Errorf("language = %q, want %q", flags.language, tt.wantLanguage)
			}
			if flags.strict != tt.wantStrict {
				t.Errorf("strict = %v, want %v", flags.strict, tt.wantStrict)
			}
			if flags.common.quiet != tt.wantQuiet {
				t.Errorf("quiet = %v, want %v", flags.common.quiet, tt.wantQuiet)
			}
			if flags.common.verbose != tt.wantVerbose {
				t.Errorf("verbose = %v, want %v", flags.common.verbose, tt.wantVerbose)
			}
			if flags.common.logJSON != tt.wantLogJSON {
				t.Errorf("logJSON = %v, want %v", flags.common.logJSON, tt.wantLogJSON)
			}
			if len(positional) != len(tt.wantPositional) {
				t.Fatalf("positional args = %v, want %v", positional, tt.wantPositional)
			}
			for i := range positional {
				if positional[i] != tt.wantPositional[i] {
					t.Errorf("positional[%d] = %q, want %q", i, positional[i], tt.wantPositional[i])
				}
			}
		})
	}
}
