package rmd2ptx

import (
	"fmt"
	"strings"
)

// NormalizeID maps a bookdown label into PreTeXt id form: underscores and
// dots become hyphens. Case is preserved so references written against the
// original labels keep resolving.
func NormalizeID(label string) string {
	label = strings.TrimSpace(label)
	label = strings.ReplaceAll(label, "_", "-")
	label = strings.ReplaceAll(label, ".", "-")
	return label
}

// SlugFromTitle derives an xml:id from a heading title when no explicit id
// is available: lowercased, with runs of non-alphanumerics collapsed into
// single hyphens.
func SlugFromTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// idRegistry hands out document-unique xml:id values, disambiguating
// duplicates with a deterministic numeric suffix.
type idRegistry struct {
	seen    map[string]bool
	renamed []string
}

func newIDRegistry() *idRegistry {
	return &idRegistry{seen: make(map[string]bool)}
}

// claim returns id unchanged when first seen, otherwise the first free id-N
// counting from 2. Renames are recorded for the conversion stats.
func (r *idRegistry) claim(id string) string {
	if !r.seen[id] {
		r.seen[id] = true
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !r.seen[candidate] {
			r.seen[candidate] = true
			r.renamed = append(r.renamed, id+" -> "+candidate)
			return candidate
		}
	}
}
