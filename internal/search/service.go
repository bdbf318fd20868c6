package search

import (
	"log"

	"northstar/api/internal/okr"
)

// Service is the facade that tries Meilisearch first and falls back to an
// in-memory scan of the live document.
type Service struct {
	meili  *Meili
	memory *Memory
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured.
func NewService(meili *Meili, memory *Memory) *Service {
	return &Service{meili: meili, memory: memory}
}

// Search tries Meilisearch if healthy, otherwise falls back to the in-memory
// scan.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to memory scan: %v", err)
	}

	results, total, err := s.memory.Search(q)
	if err != nil {
		log.Printf("search: memory scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexDocument pushes the whole document to Meilisearch (fire-and-forget).
// The document is one in-memory aggregate, so reindexing everything on each
// save is cheaper than tracking per-entity deltas.
func (s *Service) IndexDocument(doc *okr.Document) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	objectives, keyResults := RecordsFromDocument(doc)
	go func() {
		if err := s.meili.IndexObjectives(objectives); err != nil {
			log.Printf("search: index objectives: %v", err)
		}
		if err := s.meili.IndexKeyResults(keyResults); err != nil {
			log.Printf("search: index key results: %v", err)
		}
	}()
}

// DeleteObjective removes an objective and its key results from the search
// index (fire-and-forget).
func (s *Service) DeleteObjective(obj okr.Objective) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteObjective(obj.ID); err != nil {
			log.Printf("search: delete objective %s: %v", obj.ID, err)
		}
		for _, kr := range obj.KeyResults {
			if err := s.meili.DeleteKeyResult(kr.ID); err != nil {
				log.Printf("search: delete key result %s: %v", kr.ID, err)
			}
		}
	}()
}

// DeleteKeyResult removes a key result from the search index (fire-and-forget).
func (s *Service) DeleteKeyResult(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteKeyResult(id); err != nil {
			log.Printf("search: delete key result %s: %v", id, err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
