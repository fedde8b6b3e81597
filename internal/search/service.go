package search

import (
	"context"
	"log"

	"granthalaya/api/internal/store"
)

// Service is the facade that tries Meilisearch first and falls back to the
// in-memory substring scan over the persisted collection.
type Service struct {
	meili    *Meili
	fallback Fallback
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured.
func NewService(meili *Meili, fallback Fallback) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search answers a citation query. An empty query short-circuits to an empty
// result before touching either backend.
func (s *Service) Search(ctx context.Context, query string, limit int) Response {
	if query == "" {
		return Response{Results: []store.Citation{}, Total: 0, Query: query}
	}

	if s.meili != nil && s.meili.Healthy() {
		records, total, err := s.meili.Search(query, limit)
		if err == nil {
			results := make([]store.Citation, 0, len(records))
			for _, record := range records {
				results = append(results, record.toCitation())
			}
			return Response{Results: results, Total: total, Query: query}
		}
		log.Printf("search: meilisearch error, falling back to collection scan: %v", err)
	}

	results, err := s.fallback.SearchCitations(ctx, query)
	if err != nil {
		log.Printf("search: collection scan error: %v", err)
		return Response{Results: []store.Citation{}, Total: 0, Query: query}
	}
	if results == nil {
		results = []store.Citation{}
	}
	return Response{Results: results, Total: len(results), Query: query}
}

// IndexCitation pushes one citation into the index (fire-and-forget).
func (s *Service) IndexCitation(categoryID string, cit store.Citation) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	record := NewRecord(categoryID, cit)
	go func() {
		if err := s.meili.IndexCitation(record); err != nil {
			log.Printf("search: index citation %s: %v", record.ID, err)
		}
	}()
}

// DeleteCitation removes one citation from the index (fire-and-forget).
func (s *Service) DeleteCitation(categoryID, refID string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	recordID := RecordID(categoryID, refID)
	go func() {
		if err := s.meili.DeleteCitation(recordID); err != nil {
			log.Printf("search: delete citation %s: %v", recordID, err)
		}
	}()
}

// ReindexAll pushes the whole collection into Meilisearch. Called at startup
// when the index is reachable.
func (s *Service) ReindexAll(collection store.CitationCollection) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	var records []CitationRecord
	for _, category := range collection.Categories {
		for _, cit := range category.Citations {
			records = append(records, NewRecord(category.ID, cit))
		}
	}
	if err := s.meili.IndexCitations(records); err != nil {
		log.Printf("search: reindex citations: %v", err)
	}
}
