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
			name:        "no args defaults to splice",
			args:        []string{},
			wantCommand: "splice",
			wantRest:    nil,
		},
		{
			name:        "explicit splice",
			args:        []string{"splice", "page.html", "ch.ptx"},
			wantCommand: "splice",
			wantRest:    []string{"page.html", "ch.ptx"},
		},
		{
			name:        "version",
			args:        []string{"version"},
			wantCommand: "version",
			wantRest:    []string{},
		},
		{
			name:        "help with topic",
			args:        []string{"help", "splice"},
			wantCommand: "help",
			wantRest:    []string{"splice"},
		},
		{
			name:        "bare pair defaults to splice",
			args:        []string{"page.html", "ch.ptx"},
			wantCommand: "splice",
			wantRest:    []string{"page.html", "ch.ptx"},
		},
		{
			name:        "flags only default to splice",
			args:        []string{"--verbose"},
			wantCommand: "splice",
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
