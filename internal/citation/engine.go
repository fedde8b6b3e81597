// Package citation manages the flat category -> citation collection and its
// keyword search. The whole collection persists as one document, so every
// mutation serializes on a single lock.
package citation

import (
	"context"
	"errors"
	"strings"

	"granthalaya/api/internal/store"
)

var (
	ErrCategoryNotFound  = errors.New("citation: category not found")
	ErrDuplicateCategory = errors.New("citation: category already exists")
	ErrCitationNotFound  = errors.New("citation: citation not found")
	ErrEmptyCategoryName = errors.New("citation: category name is empty")
)

// collectionLockID keys the citation collection in the shared lock registry.
const collectionLockID = "citations"

type Engine struct {
	gateway store.Gateway
	locks   *store.Locks
}

func New(gateway store.Gateway, locks *store.Locks) *Engine {
	return &Engine{gateway: gateway, locks: locks}
}

type AddCitationRequest struct {
	CategoryID string
	RefID      string
	Source     string
	Location   string
	Sanskrit   string
	English    string
	Keywords   []string
}

// Slugify derives a category ID from its display name: lowercase, whitespace
// collapsed to single hyphens, everything else outside [a-z0-9-] dropped.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateCategory adds a category whose ID is the slug of its name. Names that
// slugify to an existing ID collide regardless of case or extra whitespace.
func (e *Engine) CreateCategory(ctx context.Context, name string) (store.CitationCategory, error) {
	id := Slugify(name)
	if id == "" {
		return store.CitationCategory{}, ErrEmptyCategoryName
	}

	lock := e.locks.For(collectionLockID)
	lock.Lock()
	defer lock.Unlock()

	collection, version, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return store.CitationCategory{}, err
	}
	for i := range collection.Categories {
		if collection.Categories[i].ID == id {
			return store.CitationCategory{}, ErrDuplicateCategory
		}
	}

	category := store.CitationCategory{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Citations: []store.Citation{},
	}
	collection.Categories = append(collection.Categories, category)

	if err := e.gateway.StoreCitations(ctx, collection, version); err != nil {
		return store.CitationCategory{}, err
	}
	return category, nil
}

func (e *Engine) DeleteCategory(ctx context.Context, categoryID string) error {
	lock := e.locks.For(collectionLockID)
	lock.Lock()
	defer lock.Unlock()

	collection, version, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return err
	}
	for i := range collection.Categories {
		if collection.Categories[i].ID == categoryID {
			collection.Categories = append(collection.Categories[:i], collection.Categories[i+1:]...)
			return e.gateway.StoreCitations(ctx, collection, version)
		}
	}
	return ErrCategoryNotFound
}

// RenameCategory changes the display name only; the slug ID stays stable so
// existing references keep resolving.
func (e *Engine) RenameCategory(ctx context.Context, categoryID, newName string) (store.CitationCategory, error) {
	if strings.TrimSpace(newName) == "" {
		return store.CitationCategory{}, ErrEmptyCategoryName
	}

	lock := e.locks.For(collectionLockID)
	lock.Lock()
	defer lock.Unlock()

	collection, version, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return store.CitationCategory{}, err
	}
	for i := range collection.Categories {
		if collection.Categories[i].ID == categoryID {
			collection.Categories[i].Name = strings.TrimSpace(newName)
			if err := e.gateway.StoreCitations(ctx, collection, version); err != nil {
				return store.CitationCategory{}, err
			}
			return collection.Categories[i], nil
		}
	}
	return store.CitationCategory{}, ErrCategoryNotFound
}

// AddCitation inserts at the head of the category's list; newest entries
// display first.
func (e *Engine) AddCitation(ctx context.Context, req AddCitationRequest) (store.Citation, error) {
	lock := e.locks.For(collectionLockID)
	lock.Lock()
	defer lock.Unlock()

	collection, version, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return store.Citation{}, err
	}

	for i := range collection.Categories {
		if collection.Categories[i].ID != req.CategoryID {
			continue
		}
		cit := store.Citation{
			RefID:    req.RefID,
			Source:   req.Source,
			Location: req.Location,
			Sanskrit: req.Sanskrit,
			English:  req.English,
			Keywords: req.Keywords,
		}
		collection.Categories[i].Citations = append([]store.Citation{cit}, collection.Categories[i].Citations...)
		if err := e.gateway.StoreCitations(ctx, collection, version); err != nil {
			return store.Citation{}, err
		}
		return cit, nil
	}
	return store.Citation{}, ErrCategoryNotFound
}

func (e *Engine) RemoveCitation(ctx context.Context, categoryID, refID string) error {
	lock := e.locks.For(collectionLockID)
	lock.Lock()
	defer lock.Unlock()

	collection, version, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return err
	}
	for i := range collection.Categories {
		if collection.Categories[i].ID != categoryID {
			continue
		}
		citations := collection.Categories[i].Citations
		for j := range citations {
			if citations[j].RefID == refID {
				collection.Categories[i].Citations = append(citations[:j], citations[j+1:]...)
				return e.gateway.StoreCitations(ctx, collection, version)
			}
		}
		return ErrCitationNotFound
	}
	return ErrCategoryNotFound
}

func (e *Engine) ListCategories(ctx context.Context) ([]store.CitationCategory, error) {
	collection, _, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Categories, nil
}

// SearchCitations matches the query case-insensitively as a substring of any
// keyword, the sanskrit text, or the translation. An empty query returns an
// empty result, never the whole corpus.
func (e *Engine) SearchCitations(ctx context.Context, query string) ([]store.Citation, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []store.Citation{}, nil
	}

	collection, _, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]store.Citation, 0)
	for _, category := range collection.Categories {
		for _, cit := range category.Citations {
			if citationMatches(cit, q) {
				results = append(results, cit)
			}
		}
	}
	return results, nil
}

func citationMatches(cit store.Citation, loweredQuery string) bool {
	for _, kw := range cit.Keywords {
		if strings.Contains(strings.ToLower(kw), loweredQuery) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(cit.Sanskrit), loweredQuery) {
		return true
	}
	return strings.Contains(strings.ToLower(cit.English), loweredQuery)
}

// GetCitationDetails returns the first citation whose RefID matches, scanning
// categories in display order. RefIDs are only unique per category; a reused
// RefID resolves to whichever category comes first.
func (e *Engine) GetCitationDetails(ctx context.Context, refID string) (store.Citation, error) {
	collection, _, err := e.gateway.LoadCitations(ctx)
	if err != nil {
		return store.Citation{}, err
	}
	for _, category := range collection.Categories {
		for _, cit := range category.Citations {
			if cit.RefID == refID {
				return cit, nil
			}
		}
	}
	return store.Citation{}, ErrCitationNotFound
}
