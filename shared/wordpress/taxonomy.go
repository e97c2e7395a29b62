package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

type termPayload struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description"`
	Parent      int    `json:"parent,omitempty"`
}

type termResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Parent      int    `json:"parent"`
}

func (t termResponse) toDomain() domain.Term {
	return domain.Term{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Count:       t.Count,
		Parent:      t.Parent,
	}
}

const termListQuery = "?per_page=100&orderby=name&order=asc"

// GetCategories lists the first 100 categories by name.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Term, error) {
	return c.listTerms(ctx, "list categories", "/categories")
}

// GetTags lists the first 100 tags by name.
func (c *Client) GetTags(ctx context.Context) ([]domain.Term, error) {
	return c.listTerms(ctx, "list tags", "/tags")
}

func (c *Client) listTerms(ctx context.Context, op, path string) ([]domain.Term, error) {
	var payload []termResponse
	if err := c.doJSON(ctx, op, http.MethodGet, path+termListQuery, nil, &payload); err != nil {
		return nil, err
	}

	terms := make([]domain.Term, 0, len(payload))
	for _, t := range payload {
		terms = append(terms, t.toDomain())
	}
	return terms, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, name, slug, description string) (*domain.Term, error) {
	op := fmt.Sprintf("create tag %q", name)
	return c.createTerm(ctx, op, "/tags", termPayload{Name: name, Slug: slug, Description: description})
}

// CreateCategory creates a category, nested under parent when parent is non-zero.
func (c *Client) CreateCategory(ctx context.Context, name, slug, description string, parent int) (*domain.Term, error) {
	op := fmt.Sprintf("create category %q", name)
	return c.createTerm(ctx, op, "/categories", termPayload{Name: name, Slug: slug, Description: description, Parent: parent})
}

func (c *Client) createTerm(ctx context.Context, op, path string, payload termPayload) (*domain.Term, error) {
	if strings.TrimSpace(payload.Name) == "" {
		return nil, fmt.Errorf("wordpress: %s: name cannot be empty", op)
	}

	var created termResponse
	if err := c.doJSON(ctx, op, http.MethodPost, path, payload, &created); err != nil {
		return nil, err
	}

	term := created.toDomain()
	return &term, nil
}

// GetOrCreateTags resolves tag names to ids, creating tags that do not exist.
// See GetOrCreateTagTerms.
func (c *Client) GetOrCreateTags(ctx context.Context, names []string) ([]int, error) {
	terms, err := c.GetOrCreateTagTerms(ctx, names)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// GetOrCreateTagTerms resolves tag names to terms in input order. Names match
// existing tags case-insensitively and repeated names resolve once. A tag that
// cannot be created is logged and left out; only a failure to list the
// existing tags is returned.
func (c *Client) GetOrCreateTagTerms(ctx context.Context, names []string) ([]domain.Term, error) {
	if len(names) == 0 {
		return []domain.Term{}, nil
	}

	existing, err := c.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	byName := make(map[string]domain.Term, len(existing))
	for _, t := range existing {
		key := fold.String(t.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = t
		}
	}

	seen := make(map[string]struct{}, len(names))
	terms := make([]domain.Term, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := fold.String(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if t, ok := byName[key]; ok {
			t.Name = name
			terms = append(terms, t)
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		created, err := c.CreateTag(ctx, name, Slugify(name), "")
		if err != nil {
			if id, ok := existingTermID(err); ok {
				log.Debug().Str("tag", name).Int("term_id", id).Msg("Tag already exists, using existing term")
				terms = append(terms, domain.Term{ID: id, Name: name, Slug: Slugify(name)})
				continue
			}
			log.Error().Err(&domain.TaxonomyCreationError{Name: name, Err: err}).Msg("Skipping tag")
			continue
		}

		created.Name = name
		byName[key] = *created
		terms = append(terms, *created)
	}

	return terms, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and replaces each run of characters outside
// [a-z0-9] with a single hyphen.
func Slugify(name string) string {
	return nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
}
