package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxCitations = "granthalaya_citations"

// Meili indexes citations in Meilisearch and serves ranked queries against
// them.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the citation index.
// The service keeps running without it when the initial connection fails.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxCitations,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxCitations, err)
	}

	index := m.client.Index(idxCitations)
	filterable := []interface{}{"categoryId", "source"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxCitations, err)
	}
	searchable := []string{"keywords", "sanskrit", "english", "source", "location"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxCitations, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the citation index.
func (m *Meili) Search(query string, limit int) ([]CitationRecord, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxCitations).Search(query, &meili.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	records := make([]CitationRecord, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		record, err := hitToRecord(hit)
		if err != nil {
			log.Printf("search: decode hit: %v", err)
			continue
		}
		records = append(records, record)
	}
	return records, int(resp.EstimatedTotalHits), nil
}

func hitToRecord(hit meili.Hit) (CitationRecord, error) {
	raw, err := json.Marshal(hit)
	if err != nil {
		return CitationRecord{}, err
	}
	var record CitationRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return CitationRecord{}, err
	}
	return record, nil
}

// IndexCitation adds or updates one citation in the index.
func (m *Meili) IndexCitation(record CitationRecord) error {
	_, err := m.client.Index(idxCitations).AddDocuments([]CitationRecord{record}, nil)
	return err
}

// DeleteCitation removes a citation from the index.
func (m *Meili) DeleteCitation(recordID string) error {
	_, err := m.client.Index(idxCitations).DeleteDocument(recordID, nil)
	return err
}

// IndexCitations bulk-indexes citations.
func (m *Meili) IndexCitations(records []CitationRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxCitations).AddDocuments(records, nil)
	return err
}
