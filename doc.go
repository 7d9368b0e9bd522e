// Package rmd2ptx migrates statistics-textbook chapters from
// RMarkdown/bookdown to PreTeXt XML.
//
// # Quick Start
//
// Create a service and convert a chapter source:
//
//	svc := rmd2ptx.New()
//	result, err := svc.Convert(ctx, rmd2ptx.Input{
//	    Source: string(rmd),
//	    Meta:   rmd2ptx.ChapterMeta{ID: "ch-anova"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("ch-anova.ptx", result.PTX, 0644)
//
// The result carries the PreTeXt document (result.PTX), the resolved chapter
// metadata, and conversion statistics (result.Stats) counting the sections,
// programs, figures, footnotes, and cross-references that were produced.
//
// # Conversion Pipeline
//
// Conversion follows these stages:
//
//  1. Preprocessing (line normalization, fence checking, footnote rewriting)
//  2. Front matter split and chapter metadata resolution
//  3. Markdown parsing via goldmark with R-markdown extensions
//     (inline/display math, \@ref cross-references, footnote inlining)
//  4. PreTeXt rendering through a custom node renderer
//  5. Well-formedness validation of the generated document
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := rmd2ptx.New(
//	    rmd2ptx.WithFigurePrefix("fig-"),
//	    rmd2ptx.WithImageDir("images"),
//	    rmd2ptx.WithTimeout(time.Minute),
//	)
//
// # Output Splicing
//
// A Splicer back-fills executed console output from a rendered bookdown page
// into a converted chapter. Runs are matched to program elements by content
// fingerprint, so editing prose or adding code blocks does not break the
// alignment:
//
//	sp := rmd2ptx.NewSplicer()
//	runs, err := sp.ExtractRuns(renderedHTML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	spliced, stats, err := sp.Splice(ptx, runs)
//
// Splicing an already-spliced document is a no-op, and a document whose code
// no longer matches the rendered page fails with ErrAlignment instead of
// producing a misaligned result.
//
// # Parallel Processing
//
// For batch conversion, use ServicePool to run one service per worker:
//
//	pool := rmd2ptx.NewServicePool(4)
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//	result, err := svc.Convert(ctx, input)
package rmd2ptx
