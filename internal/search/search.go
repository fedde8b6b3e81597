// Package search accelerates citation lookup with Meilisearch, falling back
// to the collection engine's substring scan when the index is unavailable.
package search

import (
	"context"

	"granthalaya/api/internal/store"
)

// CitationRecord is the data we index per citation. ID is the
// category-qualified key, since RefID alone is only unique per category.
type CitationRecord struct {
	ID         string   `json:"id"`
	RefID      string   `json:"refId"`
	CategoryID string   `json:"categoryId"`
	Source     string   `json:"source"`
	Location   string   `json:"location"`
	Sanskrit   string   `json:"sanskrit"`
	English    string   `json:"english"`
	Keywords   []string `json:"keywords"`
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []store.Citation `json:"results"`
	Total   int              `json:"total"`
	Query   string           `json:"query"`
}

// Fallback executes the canonical in-memory substring search over the
// persisted collection.
type Fallback interface {
	SearchCitations(ctx context.Context, query string) ([]store.Citation, error)
}

// RecordID builds the index primary key for a citation.
func RecordID(categoryID, refID string) string {
	return categoryID + "/" + refID
}

// NewRecord maps a citation into its index representation.
func NewRecord(categoryID string, cit store.Citation) CitationRecord {
	return CitationRecord{
		ID:         RecordID(categoryID, cit.RefID),
		RefID:      cit.RefID,
		CategoryID: categoryID,
		Source:     cit.Source,
		Location:   cit.Location,
		Sanskrit:   cit.Sanskrit,
		English:    cit.English,
		Keywords:   cit.Keywords,
	}
}

func (r CitationRecord) toCitation() store.Citation {
	return store.Citation{
		RefID:    r.RefID,
		Source:   r.Source,
		Location: r.Location,
		Sanskrit: r.Sanskrit,
		English:  r.English,
		Keywords: r.Keywords,
	}
}
