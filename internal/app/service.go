package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"northstar/api/internal/archive"
	"northstar/api/internal/export"
	"northstar/api/internal/okr"
	"northstar/api/internal/search"
	"northstar/api/internal/store"
	"northstar/api/internal/trendcache"
)

// Options carries the optional collaborators. Any of them may be nil; the
// service degrades to the core engine plus the document store.
type Options struct {
	Search   *search.Service
	Archive  *archive.Service
	Cache    *trendcache.Cache
	Export   *export.Service
	Uploader *export.Uploader
}

// Service owns the engine and coordinates persistence and the optional
// collaborators. The engine is single-writer; the mutex serializes every
// operation that touches it.
type Service struct {
	mu     sync.Mutex
	store  store.DocumentStore
	engine *okr.Engine
	opts   Options
	now    func() time.Time
}

func NewService(st store.DocumentStore, opts Options) *Service {
	return &Service{store: st, opts: opts, now: time.Now}
}

// Bootstrap loads the persisted document and seeds the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	s.mu.Lock()
	s.engine = okr.NewEngine(doc)
	s.mu.Unlock()

	if s.opts.Search != nil {
		s.opts.Search.IndexDocument(doc)
	}
	return nil
}

// SetSearch wires the search facade. Called after Bootstrap because the
// in-memory fallback scans the live document.
func (s *Service) SetSearch(svc *search.Service) {
	s.opts.Search = svc
}

// CurrentDocument exposes the live document for read-only collaborators such
// as the search fallback. Mutations stay behind the service mutex.
func (s *Service) CurrentDocument() *okr.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Document()
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := s.store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// persist saves the document and notifies the collaborators. Called with the
// mutex held, after the engine mutation already succeeded in memory.
func (s *Service) persist(ctx context.Context) error {
	doc := s.engine.Document()
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	if s.opts.Archive != nil {
		raw, err := store.EncodeDocument(doc)
		if err == nil {
			if _, err := s.opts.Archive.Commit(raw, "Save document"); err != nil {
				log.Printf("app: archive commit: %v", err)
			}
		}
	}
	if s.opts.Search != nil {
		s.opts.Search.IndexDocument(doc)
	}
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Invalidate(ctx); err != nil {
			log.Printf("app: invalidate trend cache: %v", err)
		}
	}
	return nil
}

// Overview returns every objective's view model plus the full history log.
func (s *Service) Overview(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.engine.Document()
	return map[string]any{
		"objectives": doc.Views(s.now()),
		"history":    doc.History,
	}, nil
}

// CreateObjective adds an objective and returns its view model.
func (s *Service) CreateObjective(ctx context.Context, input okr.ObjectiveInput) (map[string]any, error) {
	if input.Title == nil || *input.Title == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.engine.AddObjective(input)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"objective": okr.BuildObjectiveView(s.now(), created)}, nil
}

// UpdateObjective applies a partial edit to an objective.
func (s *Service) UpdateObjective(ctx context.Context, id string, input okr.ObjectiveInput) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.UpdateObjective(id, input) {
		return nil, objectiveNotFound(id)
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	obj := s.findObjective(id)
	return map[string]any{"objective": okr.BuildObjectiveView(s.now(), *obj)}, nil
}

// DeleteObjective removes an objective and its key results.
func (s *Service) DeleteObjective(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.findObjective(id)
	if removed != nil {
		// copy before the engine mutates the slice
		copied := *removed
		removed = &copied
	}
	if !s.engine.DeleteObjective(id) {
		return objectiveNotFound(id)
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if s.opts.Search != nil && removed != nil {
		s.opts.Search.DeleteObjective(*removed)
	}
	return nil
}

// CreateKeyResult adds a key result under an objective.
func (s *Service) CreateKeyResult(ctx context.Context, objectiveID string, input okr.KeyResultInput) (map[string]any, error) {
	if input.Title == nil || *input.Title == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created, ok := s.engine.AddKeyResult(objectiveID, input)
	if !ok {
		return nil, objectiveNotFound(objectiveID)
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"keyResult": created}, nil
}

// UpdateKeyResult applies a partial edit to a key result.
func (s *Service) UpdateKeyResult(ctx context.Context, objectiveID, krID string, input okr.KeyResultInput) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.UpdateKeyResult(objectiveID, krID, input) {
		return nil, keyResultNotFound(krID)
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	obj := s.findObjective(objectiveID)
	return map[string]any{"objective": okr.BuildObjectiveView(s.now(), *obj)}, nil
}

// DeleteKeyResult removes a key result.
func (s *Service) DeleteKeyResult(ctx context.Context, objectiveID, krID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.DeleteKeyResult(objectiveID, krID) {
		return keyResultNotFound(krID)
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if s.opts.Search != nil {
		s.opts.Search.DeleteKeyResult(krID)
	}
	return nil
}

// AdjustProgress moves a key result's current value by delta.
func (s *Service) AdjustProgress(ctx context.Context, objectiveID, krID string, delta float64) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.AdjustKeyResultProgress(objectiveID, krID, delta) {
		return nil, keyResultNotFound(krID)
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	obj := s.findObjective(objectiveID)
	return map[string]any{"objective": okr.BuildObjectiveView(s.now(), *obj)}, nil
}

// Balance equal-balances all objective and key-result weights.
func (s *Service) Balance(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.BalanceAll()
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"objectives": s.engine.Document().Views(s.now())}, nil
}

// History returns audit entries, optionally filtered by item type and group.
func (s *Service) History(itemType, group string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"history": s.engine.Document().FilterHistory(itemType, group),
	}
}

// GroupedTrend returns the per-group progress series, cached when Redis is
// configured.
func (s *Service) GroupedTrend(ctx context.Context) (map[string][]okr.TrendPoint, error) {
	if s.opts.Cache != nil {
		trend, found, err := s.opts.Cache.GetGrouped(ctx)
		if err != nil {
			log.Printf("app: trend cache read: %v", err)
		}
		if found {
			return trend, nil
		}
	}

	s.mu.Lock()
	trend := s.engine.Document().GroupedTrend()
	s.mu.Unlock()

	if s.opts.Cache != nil {
		if err := s.opts.Cache.SetGrouped(ctx, trend); err != nil {
			log.Printf("app: trend cache write: %v", err)
		}
	}
	return trend, nil
}

// IndividualTrend returns per-objective progress series, cached when Redis is
// configured. Empty group or objectiveID means "all".
func (s *Service) IndividualTrend(ctx context.Context, group, objectiveID string) ([]okr.ObjectiveSeries, error) {
	if s.opts.Cache != nil {
		series, found, err := s.opts.Cache.GetIndividual(ctx, group, objectiveID)
		if err != nil {
			log.Printf("app: trend cache read: %v", err)
		}
		if found {
			return series, nil
		}
	}

	s.mu.Lock()
	series := s.engine.Document().IndividualTrend(group, objectiveID)
	s.mu.Unlock()

	if s.opts.Cache != nil {
		if err := s.opts.Cache.SetIndividual(ctx, group, objectiveID, series); err != nil {
			log.Printf("app: trend cache write: %v", err)
		}
	}
	return series, nil
}

// Search runs a full-text query over objectives and key results.
func (s *Service) Search(q search.Query) (search.Response, error) {
	if s.opts.Search == nil {
		return search.Response{}, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search is not configured", nil)
	}
	return s.opts.Search.Search(q), nil
}

// ExportReport renders a PDF report and, when object storage is configured,
// archives a copy. Returns the result and the storage key (empty if not
// uploaded).
func (s *Service) ExportReport(ctx context.Context, req export.Request) (*export.Result, string, error) {
	if s.opts.Export == nil {
		return nil, "", domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}

	s.mu.Lock()
	doc := cloneDocument(s.engine.Document())
	s.mu.Unlock()

	result, err := s.opts.Export.Report(doc, s.now(), req)
	if err != nil {
		return nil, "", err
	}

	key := ""
	if s.opts.Uploader != nil {
		key, err = s.opts.Uploader.Upload(ctx, result)
		if err != nil {
			log.Printf("app: report upload: %v", err)
			key = ""
		}
	}
	return result, key, nil
}

// Revisions lists archived document revisions.
func (s *Service) Revisions(limit int) (map[string]any, error) {
	if s.opts.Archive == nil {
		return nil, domainError(http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Archive is not configured", nil)
	}
	revisions, err := s.opts.Archive.Revisions(limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return map[string]any{"revisions": revisions}, nil
}

// RevisionContent returns the document as persisted at a revision.
func (s *Service) RevisionContent(hash string) ([]byte, error) {
	if s.opts.Archive == nil {
		return nil, domainError(http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Archive is not configured", nil)
	}
	raw, err := s.opts.Archive.ContentAt(hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	return raw, nil
}

// Close releases the optional collaborators.
func (s *Service) Close() {
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Close(); err != nil {
			log.Printf("app: close trend cache: %v", err)
		}
	}
}

func (s *Service) findObjective(id string) *okr.Objective {
	doc := s.engine.Document()
	for i := range doc.Objectives {
		if doc.Objectives[i].ID == id {
			return &doc.Objectives[i]
		}
	}
	return nil
}

// cloneDocument deep-copies via the JSON boundary so long-running export work
// can proceed outside the service lock.
func cloneDocument(doc *okr.Document) *okr.Document {
	raw, err := store.EncodeDocument(doc)
	if err != nil {
		return doc
	}
	return store.DecodeDocument(raw)
}

func objectiveNotFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Objective not found", map[string]any{"id": id})
}

func keyResultNotFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Key result not found", map[string]any{"id": id})
}
