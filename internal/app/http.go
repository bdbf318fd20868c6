package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"northstar/api/internal/export"
	"northstar/api/internal/okr"
	"northstar/api/internal/search"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{"status": "error", "error": err.Error()}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/okrs" {
		payload, err := s.service.Overview(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/objectives" {
		var body objectiveBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateObjective(r.Context(), body.input())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/balance" {
		payload, err := s.service.Balance(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/history" {
		itemType := strings.TrimSpace(r.URL.Query().Get("itemType"))
		group := strings.TrimSpace(r.URL.Query().Get("group"))
		writeJSON(w, http.StatusOK, s.service.History(itemType, group))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/trends/grouped" {
		trend, err := s.service.GroupedTrend(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trends": trend})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/trends/individual" {
		group := strings.TrimSpace(r.URL.Query().Get("group"))
		objectiveID := strings.TrimSpace(r.URL.Query().Get("objectiveId"))
		series, err := s.service.IndividualTrend(r.Context(), group, objectiveID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"series": series})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		s.handleSearch(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/export/report" {
		s.handleExportReport(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/revisions" {
		limit := 50
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
				return
			}
			limit = parsed
		}
		payload, err := s.service.Revisions(limit)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	parts := splitPath(r.URL.Path)

	// /api/revisions/{hash}
	if r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "api" && parts[1] == "revisions" {
		raw, err := s.service.RevisionContent(parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	// /api/objectives/{id}
	if len(parts) == 3 && parts[0] == "api" && parts[1] == "objectives" {
		s.handleObjective(w, r, parts[2])
		return
	}

	// /api/objectives/{id}/keyresults
	if r.Method == http.MethodPost && len(parts) == 4 && parts[0] == "api" && parts[1] == "objectives" && parts[3] == "keyresults" {
		var body keyResultBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateKeyResult(r.Context(), parts[2], body.input())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	// /api/objectives/{id}/keyresults/{krId}
	if len(parts) == 5 && parts[0] == "api" && parts[1] == "objectives" && parts[3] == "keyresults" {
		s.handleKeyResult(w, r, parts[2], parts[4])
		return
	}

	// /api/objectives/{id}/keyresults/{krId}/progress
	if r.Method == http.MethodPost && len(parts) == 6 && parts[0] == "api" && parts[1] == "objectives" && parts[3] == "keyresults" && parts[5] == "progress" {
		var body struct {
			Delta *float64 `json:"delta"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if body.Delta == nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "delta is required", nil)
			return
		}
		payload, err := s.service.AdjustProgress(r.Context(), parts[2], parts[4], *body.Delta)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleObjective(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var body objectiveBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.UpdateObjective(r.Context(), id, body.input())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodDelete:
		if err := s.service.DeleteObjective(r.Context(), id); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	}
}

func (s *HTTPServer) handleKeyResult(w http.ResponseWriter, r *http.Request, objectiveID, krID string) {
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var body keyResultBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.UpdateKeyResult(r.Context(), objectiveID, krID, body.input())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodDelete:
		if err := s.service.DeleteKeyResult(r.Context(), objectiveID, krID); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	}
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	filterType := strings.TrimSpace(r.URL.Query().Get("type"))
	group := strings.TrimSpace(r.URL.Query().Get("group"))
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "offset must be an integer", nil)
			return
		}
		offset = parsed
	}

	payload, err := s.service.Search(search.Query{
		Text:        q,
		FilterType:  search.ResultType(filterType),
		FilterGroup: group,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *HTTPServer) handleExportReport(w http.ResponseWriter, r *http.Request) {
	req := export.Request{
		Format: export.Format(strings.TrimSpace(r.URL.Query().Get("format"))),
		Group:  strings.TrimSpace(r.URL.Query().Get("group")),
	}
	if req.Format != "" && req.Format != export.FormatPDF && req.Format != export.FormatHTML {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be pdf or html", nil)
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "year must be an integer", nil)
			return
		}
		req.Year = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("quarter")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "quarter must be an integer", nil)
			return
		}
		req.Quarter = parsed
	}

	result, key, err := s.service.ExportReport(r.Context(), req)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	if key != "" {
		w.Header().Set("X-Report-Key", key)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// objectiveBody mirrors ObjectiveInput with JSON tags; nil means "not
// supplied" so partial edits leave other fields alone.
type objectiveBody struct {
	Title       *string `json:"title"`
	Purpose     *string `json:"purpose"`
	Group       *string `json:"group"`
	Year        *int    `json:"year"`
	Quarter     *int    `json:"quarter"`
	StartDate   *string `json:"startDate"`
	TargetDate  *string `json:"targetDate"`
	Weight      *int    `json:"weight"`
	LastCheckin *string `json:"lastCheckin"`
}

func (b objectiveBody) input() okr.ObjectiveInput {
	return okr.ObjectiveInput{
		Title:       b.Title,
		Purpose:     b.Purpose,
		Group:       b.Group,
		Year:        b.Year,
		Quarter:     b.Quarter,
		StartDate:   b.StartDate,
		TargetDate:  b.TargetDate,
		Weight:      b.Weight,
		LastCheckin: b.LastCheckin,
	}
}

type keyResultBody struct {
	Title       *string  `json:"title"`
	Target      *float64 `json:"target"`
	Current     *float64 `json:"current"`
	Weight      *int     `json:"weight"`
	Status      *string  `json:"status"`
	Confidence  *string  `json:"confidence"`
	StartDate   *string  `json:"startDate"`
	TargetDate  *string  `json:"targetDate"`
	LastCheckin *string  `json:"lastCheckin"`
	Evidence    *string  `json:"evidence"`
	Comments    *string  `json:"comments"`
}

func (b keyResultBody) input() okr.KeyResultInput {
	return okr.KeyResultInput{
		Title:       b.Title,
		Target:      b.Target,
		Current:     b.Current,
		Weight:      b.Weight,
		Status:      b.Status,
		Confidence:  b.Confidence,
		StartDate:   b.StartDate,
		TargetDate:  b.TargetDate,
		LastCheckin: b.LastCheckin,
		Evidence:    b.Evidence,
		Comments:    b.Comments,
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, export.ErrPDFDependencyMissing) {
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF renderer unavailable", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
