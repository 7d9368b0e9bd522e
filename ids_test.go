package rmd2ptx

import (
	"testing"
)

func TestNormalizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{
			name:     "underscores to hyphens",
			label:    "hist_one",
			expected: "hist-one",
		},
		{
			name:     "dots to hyphens",
			label:    "freq.table",
			expected: "freq-table",
		},
		{
			name:     "mixed separators",
			label:    "anova_2.way",
			expected: "anova-2-way",
		},
		{
			name:     "case preserved",
			label:    "AwesomePlot",
			expected: "AwesomePlot",
		},
		{
			name:     "surrounding space trimmed",
			label:    "  margins  ",
			expected: "margins",
		},
		{
			name:     "already normalized",
			label:    "ch-regression",
			expected: "ch-regression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.label); got != tt.expected {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.label, got, tt.expected)
			}
		})
	}
}

func TestSlugFromTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "lowercased and hyphenated",
			title:    "Getting started with R",
			expected: "getting-started-with-r",
		},
		{
			name:     "punctuation collapsed",
			title:    "Comparing several means (one-way ANOVA)",
			expected: "comparing-several-means-one-way-anova",
		},
		{
			name:     "no leading or trailing hyphen",
			title:    "  ...Bayes!  ",
			expected: "bayes",
		},
		{
			name:     "digits kept",
			title:    "Chi-squared 2",
			expected: "chi-squared-2",
		},
		{
			name:     "empty title",
			title:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugFromTitle(tt.title); got != tt.expected {
				t.Errorf("SlugFromTitle(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestIDRegistryClaim(t *testing.T) {
	t.Parallel()

	reg := newIDRegistry()

	if got := reg.claim("fig-hist"); got != "fig-hist" {
		t.Errorf("first claim = %q, want fig-hist", got)
	}
	if got := reg.claim("fig-hist"); got != "fig-hist-2" {
		t.Errorf("second claim = %q, want fig-hist-2", got)
	}
	if got := reg.claim("fig-hist"); got != "fig-hist-3" {
		t.Errorf("third claim = %q, want fig-hist-3", got)
	}
	if got := reg.claim("fig-box"); got != "fig-box" {
		t.Errorf("unrelated claim = %q, want fig-box", got)
	}

	if len(reg.renamed) != 2 {
		t.Fatalf("renamed count = %d, want 2", len(reg.renamed))
	}
	if reg.renamed[0] != "fig-hist -> fig-hist-2" {
		t.Errorf("renamed[0] = %q", reg.renamed[0])
	}
}

func TestIDRegistryClaimSuffixCollision(t *testing.T) {
	t.Parallel()

	// An author-chosen id matching the suffix pattern must not be reissued.
	reg := newIDRegistry()
	reg.claim("fig-hist")
	reg.claim("fig-hist-2")

	if got := reg.claim("fig-hist"); got != "fig-hist-3" {
		t.Errorf("claim after taken suffix = %q, want fig-hist-3", got)
	}
}
