package rmd2ptx

import (
	"fmt"
	"time"
)

// Converter conventions. All of these can be overridden with Options.
const (
	// DefaultLanguage is the program language attribute for executed chunks.
	DefaultLanguage = "r"
	// DefaultFigurePrefix builds figure xml:ids from chunk labels.
	DefaultFigurePrefix = "fig-"
	// DefaultTablePrefix builds table xref targets from \@ref(tab:...) labels.
	DefaultTablePrefix = "table-"
	// DefaultImageDir replaces the bookdown ./img/ prefix in include_graphics paths.
	DefaultImageDir = "images"
	// DefaultGeneratedDir locates knitr-generated figure images.
	DefaultGeneratedDir = "generated"
	// DefaultImageWidth is the width attribute on figure images.
	DefaultImageWidth = "80%"
	// DefaultOutputMarker prefixes every console output line in rendered pages.
	DefaultOutputMarker = "##"
)

// defaultTimeout bounds one document conversion.
const defaultTimeout = 30 * time.Second

// ChapterMeta identifies the chapter element of a converted document.
// Zero-valued fields are resolved from front matter or the first level-1
// heading during conversion.
type ChapterMeta struct {
	ID    string
	Title string
}

// Input contains conversion parameters for one chapter.
type Input struct {
	Source string      // RMarkdown chapter source (required)
	Meta   ChapterMeta // explicit chapter identity (optional)
}

// Validate checks that input is convertible.
func (in *Input) Validate() error {
	if in == nil || in.Source == "" {
		return ErrEmptySource
	}
	return nil
}

// ConvertStats counts what one conversion produced.
type ConvertStats struct {
	Sections   int      // section, subsection, subsubsection elements
	Programs   int      // program elements
	Consoles   int      // console/output elements from plain fences
	Figures    int      // figure elements
	Footnotes  int      // fn elements
	Xrefs      int      // xref elements
	RenamedIDs []string // ids that needed a deterministic suffix
}

// ConvertResult holds the outcome of one conversion.
type ConvertResult struct {
	PTX   []byte       // the PreTeXt chapter document
	Meta  ChapterMeta  // resolved chapter identity
	Stats ConvertStats
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	language     string
	figurePrefix string
	tablePrefix  string
	imageDir     string
	generatedDir string
	imageWidth   string
	timeout      time.Duration
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		language:     DefaultLanguage,
		figurePrefix: DefaultFigurePrefix,
		tablePrefix:  DefaultTablePrefix,
		imageDir:     DefaultImageDir,
		generatedDir: DefaultGeneratedDir,
		imageWidth:   DefaultImageWidth,
		timeout:      defaultTimeout,
	}
}

// WithTimeout sets the per-document conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("rmd2ptx: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithLanguage sets the program language attribute for executed chunks.
// Panics if lang is empty.
func WithLanguage(lang string) Option {
	if lang == "" {
		panic("rmd2ptx: WithLanguage requires a language")
	}
	return func(s *Service) {
		s.cfg.language = lang
	}
}

// WithFigurePrefix sets the prefix for figure xml:ids.
func WithFigurePrefix(prefix string) Option {
	return func(s *Service) {
		s.cfg.figurePrefix = prefix
	}
}

// WithTablePrefix sets the prefix for table xref targets.
func WithTablePrefix(prefix string) Option {
	return func(s *Service) {
		s.cfg.tablePrefix = prefix
	}
}

// WithImageDir sets the directory that replaces ./img/ in figure sources.
func WithImageDir(dir string) Option {
	return func(s *Service) {
		s.cfg.imageDir = dir
	}
}

// WithGeneratedDir sets the directory for knitr-generated figure images.
func WithGeneratedDir(dir string) Option {
	return func(s *Service) {
		s.cfg.generatedDir = dir
	}
}

// WithImageWidth sets the width attribute on figure images.
func WithImageWidth(width string) Option {
	return func(s *Service) {
		s.cfg.imageWidth = width
	}
}

// String renders stats in the compact form the CLI prints under --verbose.
func (s ConvertStats) String() string {
	return fmt.Sprintf("%d sections, %d programs, %d figures, %d footnotes, %d xrefs",
		s.Sections, s.Programs, s.Figures, s.Footnotes, s.Xrefs)
}
