package main

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestSplitCommand - subcommand routing
// ---------------------------------------------------------------------------

func TestSplitCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantCommand string
		wantRest    []string
	}{
		{
			name:        "no args defaults to convert",
			args:        []string{},
			wantCommand: "convert",
			wantRest:    nil,
		},
		{
			name:        "explicit convert",
			args:        []string{"convert", "ch.Rmd", "ch.ptx"},
			wantCommand: "convert",
			wantRest:    []string{"ch.Rmd", "ch.ptx"},
		},
		{
			name:        "init with path",
			args:        []string{"init", "book.yaml"},
			wantCommand: "init",
			wantRest:    []string{"book.yaml"},
		},
		{
			name:        "version",
			args:        []string{"version"},
			wantCommand: "version",
			wantRest:    []string{},
		},
		{
			name:        "help with topic",
			args:        []string{"help", "convert"},
			wantCommand: "help",
			wantRest:    []string{"convert"},
		},
		{
			name:        "bare pair defaults to convert",
			args:        []string{"ch.Rmd", "ch.ptx"},
			wantCommand: "convert",
			wantRest:    []string{"ch.Rmd", "ch.ptx"},
		},
		{
			name:        "flags only default to convert",
			args:        []string{"--verbose"},
			wantCommand: "convert",
			wantRest:    []string{"--verbose"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			command, rest := splitCommand(tt.args)

			if command != tt.wantCommand {
				t.Errorf("command = %q, want %q", command, tt.wantCommand)
			}
			if len(rest) != len(tt.wantRest) {
				t.Fatalf("rest = %v, want %v", rest, tt.wantRest)
			}
			for i := range rest {
				if rest[i] != tt.wantRest[i] {
					t.Errorf("rest[%d] = %q, want %q", i, rest[i], tt.wantRest[i])
				}
			}
		})
	}
}
