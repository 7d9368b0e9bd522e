package rmd2ptx_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/statpress/go-rmd2ptx"
)

// Example demonstrates basic chapter conversion.
func Example() {
	svc := rmd2ptx.New()

	result, err := svc.Convert(context.Background(), rmd2ptx.Input{
		Source: "# Hello World {#hello}\n\nThis is a test.",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// Check that a chapter document was generated
	if strings.Contains(string(result.PTX), `<chapter xml:id="hello"`) {
		fmt.Println("PreTeXt generated successfully")
	}
	// Output: PreTeXt generated successfully
}

// Example_withMeta demonstrates overriding the chapter identity, the way
// batch drivers do when the manifest names a chapter.
func Example_withMeta() {
	svc := rmd2ptx.New()

	result, err := svc.Convert(context.Background(), rmd2ptx.Input{
		Source: "# Working Title\n\nChapter content here.",
		Meta: rmd2ptx.ChapterMeta{
			ID:    "ch-intro",
			Title: "Introduction",
		},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(string(result.PTX), `<chapter xml:id="ch-intro"`) {
		fmt.Println("Chapter identity overridden")
	}
	// Output: Chapter identity overridden
}

// Example_withImageWidth demonstrates configuring the figure image width.
func Example_withImageWidth() {
	svc := rmd2ptx.New(rmd2ptx.WithImageWidth("60%"))

	result, err := svc.Convert(context.Background(), rmd2ptx.Input{
		Source: "# Figures\n\n```{r hist, fig.cap=\"A histogram\", echo=FALSE}\nhist(x)\n```\n",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(string(result.PTX), `width="60%"`) {
		fmt.Println("Image width applied")
	}
	// Output: Image width applied
}

// ExampleSplicer demonstrates splicing captured console output from a
// rendered bookdown page into a converted chapter.
func ExampleSplicer() {
	svc := rmd2ptx.New()

	result, err := svc.Convert(context.Background(), rmd2ptx.Input{
		Source: "# Means {#means}\n\n```{r}\nmean(x)\n```\n",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	rendered := `<html><body>
<div class="sourceCode"><pre class="sourceCode r"><code class="sourceCode r">mean(x)</code></pre></div>
<pre><code>## [1] 7</code></pre>
</body></html>`

	sp := rmd2ptx.NewSplicer()
	runs, err := sp.ExtractRuns([]byte(rendered))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	spliced, stats, err := sp.Splice(result.PTX, runs)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(string(spliced), "<console>") {
		fmt.Println(stats)
	}
	// Output: 1 runs, 1 spliced, 0 already spliced
}

// ExampleServicePool demonstrates parallel batch processing.
func ExampleServicePool() {
	pool := rmd2ptx.NewServicePool(2)

	// Process two chapters in parallel
	docs := []string{
		"# Document 1\n\nFirst chapter.",
		"# Document 2\n\nSecond chapter.",
	}

	// Channel to collect results, WaitGroup to synchronize goroutines
	results := make(chan bool, len(docs))
	var wg sync.WaitGroup

	for _, doc := range docs {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			result, err := svc.Convert(context.Background(), rmd2ptx.Input{Source: source})
			results <- err == nil && strings.Contains(string(result.PTX), "Document")
		}(doc)
	}

	// Wait for all goroutines to finish
	wg.Wait()

	// Collect results
	success := 0
	for range docs {
		if <-results {
			success++
		}
	}
	fmt.Printf("Processed %d documents\n", success)
	// Output: Processed 2 documents
}
