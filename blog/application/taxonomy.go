package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dfryer1193/tusitala/blog/domain"
	"golang.org/x/text/cases"
)

// TaxonomyResolver turns a mixed list of tag ids and tag names into remote tag ids.
type TaxonomyResolver struct {
	tags domain.TagResolver
}

func NewTaxonomyResolver(tags domain.TagResolver) *TaxonomyResolver {
	return &TaxonomyResolver{tags: tags}
}

type tagEntry struct {
	id   int
	name string
}

// Resolve returns remote tag ids in input order. Entries are trimmed, blanks
// dropped and repeats removed case-insensitively, keeping the first. Numeric
// entries pass through as ids; names are resolved (and created) remotely.
// When name resolution fails the numeric ids are still returned alongside the
// error.
func (r *TaxonomyResolver) Resolve(ctx context.Context, inputs []string) ([]int, error) {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(inputs))
	entries := make([]tagEntry, 0, len(inputs))
	var names []string

	for _, in := range inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		key := fold.String(in)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if id, err := strconv.Atoi(in); err == nil {
			if id > 0 {
				entries = append(entries, tagEntry{id: id})
			}
			continue
		}
		entries = append(entries, tagEntry{name: in})
		names = append(names, in)
	}

	resolved := make(map[string]int, len(names))
	var resolveErr error
	if len(names) > 0 {
		terms, err := r.tags.GetOrCreateTagTerms(ctx, names)
		if err != nil {
			resolveErr = fmt.Errorf("failed to resolve tag names: %w", err)
		}
		for _, t := range terms {
			resolved[fold.String(t.Name)] = t.ID
		}
	}

	ids := make([]int, 0, len(entries))
	added := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		id := e.id
		if e.name != "" {
			var ok bool
			if id, ok = resolved[fold.String(e.name)]; !ok {
				continue
			}
		}
		if _, dup := added[id]; dup {
			continue
		}
		added[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, resolveErr
}
