// Package config loads the book manifest shared by both migration tools.
// The manifest maps each chapter of the book to its RMarkdown source, its
// PreTeXt output, and (when the bookdown site has been built) its rendered
// HTML page.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/statpress/go-rmd2ptx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrChapterIncomplete = errors.New("chapter entry missing required field")
	ErrDuplicateChapter  = errors.New("duplicate chapter id")
	ErrUnknownChapter    = errors.New("unknown chapter id")
)

// Field length limits. Manifests are hand-edited; a limit violation is
// almost always a paste accident.
const (
	MaxIDLength     = 100  // chapter xml:id
	MaxTitleLength  = 200  // chapter title
	MaxPathLength   = 1024 // any file path in the manifest
	MaxMarkerLength = 8    // console output marker, usually "##"
	MaxPrefixLength = 32   // identifier prefixes such as "fig-"
)

// Config holds the full manifest for a book migration.
type Config struct {
	Book     BookConfig    `yaml:"book"`
	Paths    PathsConfig   `yaml:"paths"`
	Convert  ConvertConfig `yaml:"convert"`
	Splice   SpliceConfig  `yaml:"splice"`
	Chapters []Chapter     `yaml:"chapters"`
}

// BookConfig identifies the book being migrated.
type BookConfig struct {
	Title string `yaml:"title"`
}

// PathsConfig holds the directories chapter file names resolve against.
type PathsConfig struct {
	SourceDir   string `yaml:"sourceDir"`   // RMarkdown chapter sources
	OutputDir   string `yaml:"outputDir"`   // PreTeXt output documents
	RenderedDir string `yaml:"renderedDir"` // built bookdown HTML pages
}

// ConvertConfig defines converter conventions.
type ConvertConfig struct {
	Language     string `yaml:"language"`     // program language attribute (default "r")
	FigurePrefix string `yaml:"figurePrefix"` // figure xml:id prefix (default "fig-")
	TablePrefix  string `yaml:"tablePrefix"`  // table xref prefix (default "table-")
	ImageDir     string `yaml:"imageDir"`     // replaces ./img/ in include_graphics paths
	GeneratedDir string `yaml:"generatedDir"` // location of knitr-generated figure images
	ImageWidth   string `yaml:"imageWidth"`   // figure image width attribute (default "80%")
}

// SpliceConfig defines splicer conventions.
type SpliceConfig struct {
	Marker string `yaml:"marker"` // console output line prefix (default "##")
	Strict bool   `yaml:"strict"` // require run count == program count
}

// Chapter maps one chapter across the three representations.
// HTML may be empty for chapters whose rendered page produces no console
// output; the splicer skips those.
type Chapter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Rmd   string `yaml:"rmd"`
	Ptx   string `yaml:"ptx"`
	HTML  string `yaml:"html"`
}

// RmdPath resolves a chapter's RMarkdown source against the manifest dirs.
func (c *Config) RmdPath(ch Chapter) string {
	return filepath.Join(c.Paths.SourceDir, ch.Rmd)
}

// PtxPath resolves a chapter's PreTeXt document against the manifest dirs.
func (c *Config) PtxPath(ch Chapter) string {
	return filepath.Join(c.Paths.OutputDir, ch.Ptx)
}

// HTMLPath resolves a chapter's rendered page, or "" when it has none.
func (c *Config) HTMLPath(ch Chapter) string {
	if ch.HTML == "" {
		return ""
	}
	return filepath.Join(c.Paths.RenderedDir, ch.HTML)
}

// FindChapter returns the chapter with the given id.
func (c *Config) FindChapter(id string) (Chapter, error) {
	for _, ch := range c.Chapters {
		if ch.ID == id {
			return ch, nil
		}
	}
	return Chapter{}, fmt.Errorf("%w: %q", ErrUnknownChapter, id)
}

// Validate checks manifest fields. Called automatically by LoadConfig, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("book.title", c.Book.Title, MaxTitleLength); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"paths.sourceDir", c.Paths.SourceDir},
		{"paths.outputDir", c.Paths.OutputDir},
		{"paths.renderedDir", c.Paths.RenderedDir},
	} {
		if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("convert.figurePrefix", c.Convert.FigurePrefix, MaxPrefixLength); err != nil {
		return err
	}
	if err := validateFieldLength("convert.tablePrefix", c.Convert.TablePrefix, MaxPrefixLength); err != nil {
		return err
	}
	if err := validateFieldLength("splice.marker", c.Splice.Marker, MaxMarkerLength); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Chapters))
	for i, ch := range c.Chapters {
		where := fmt.Sprintf("chapters[%d]", i)
		if ch.ID == "" {
			return fmt.Errorf("%w: %s.id", ErrChapterIncomplete, where)
		}
		if ch.Rmd == "" {
			return fmt.Errorf("%w: %s.rmd", ErrChapterIncomplete, where)
		}
		if ch.Ptx == "" {
			return fmt.Errorf("%w: %s.ptx", ErrChapterIncomplete, where)
		}
		if seen[ch.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateChapter, ch.ID)
		}
		seen[ch.ID] = true

		if err := validateFieldLength(where+".id", ch.ID, MaxIDLength); err != nil {
			return err
		}
		if err := validateFieldLength(where+".title", ch.Title, MaxTitleLength); err != nil {
			return err
		}
		for _, f := range []struct{ name, value string }{
			{where + ".rmd", ch.Rmd},
			{where + ".ptx", ch.Ptx},
			{where + ".html", ch.HTML},
		} {
			if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the compiled-in manifest for the statistics book
// this toolset was built to migrate. Chapters without an html entry have no
// console output to splice.
func DefaultConfig() *Config {
	return &Config{
		Book: BookConfig{Title: "Learning Statistics with R"},
		Paths: PathsConfig{
			SourceDir:   "bookdown",
			OutputDir:   filepath.Join("pretext", "source"),
			RenderedDir: filepath.Join("docs", "book"),
		},
		Convert: ConvertConfig{
			Language:     "r",
			FigurePrefix: "fig-",
			TablePrefix:  "table-",
			ImageDir:     "images",
			GeneratedDir: "generated",
			ImageWidth:   "80%",
		},
		Splice: SpliceConfig{Marker: "##"},
		Chapters: []Chapter{
			{
				ID:    "ch3-intro-r",
				Title: "Getting started with R",
				Rmd:   "02.03-introR.Rmd",
				Ptx:   "ch3-intro-r.ptx",
			},
			{
				ID:    "ch5-descriptive-statistics",
				Title: "Describing data with statistics",
				Rmd:   "03.05-descriptives.Rmd",
				Ptx:   "ch5-descriptive-statistics.ptx",
			},
			{
				ID:    "anova",
				Title: "Comparing several means (one-way ANOVA)",
				Rmd:   "05.14-anova.Rmd",
				Ptx:   "ch-anova.ptx",
			},
			{
				ID:    "ch-regression",
				Title: "Linear regression",
				Rmd:   "05.15-regression.Rmd",
				Ptx:   "ch-regression.ptx",
				HTML:  "regression.html",
			},
			{
				ID:    "ch5-factorial-anova",
				Title: "Factorial ANOVA",
				Rmd:   "05.16-anova2.Rmd",
				Ptx:   "ch5-factorial-anova.ptx",
				HTML:  "anova2.html",
			},
			{
				ID:    "ch6-bayesian-statistics",
				Title: "Bayesian statistics",
				Rmd:   "06.17-bayes.Rmd",
				Ptx:   "ch6-bayesian-statistics.ptx",
				HTML:  "bayes.html",
			},
		},
	}
}

// applyDefaults fills zero-valued convention fields after a manifest load,
// so a minimal manifest listing only chapters still behaves.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Convert.Language == "" {
		c.Convert.Language = def.Convert.Language
	}
	if c.Convert.FigurePrefix == "" {
		c.Convert.FigurePrefix = def.Convert.FigurePrefix
	}
	if c.Convert.TablePrefix == "" {
		c.Convert.TablePrefix = def.Convert.TablePrefix
	}
	if c.Convert.ImageDir == "" {
		c.Convert.ImageDir = def.Convert.ImageDir
	}
	if c.Convert.GeneratedDir == "" {
		c.Convert.GeneratedDir = def.Convert.GeneratedDir
	}
	if c.Convert.ImageWidth == "" {
		c.Convert.ImageWidth = def.Convert.ImageWidth
	}
	if c.Splice.Marker == "" {
		c.Splice.Marker = def.Splice.Marker
	}
}

// LoadConfig loads a manifest from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WriteDefault writes the compiled-in manifest as a starter file.
func WriteDefault(path string) error {
	data, err := yamlutil.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	// #nosec G306 -- manifests are meant to be readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-rmd2ptx/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-rmd2ptx", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
