// Package httpapi provides the REST HTTP adapter for the calendar.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hylla/lanecal/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	calendar common.CalendarService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over a calendar service.
func NewHandler(calendar common.CalendarService) *Handler {
	return &Handler{calendar: calendar}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.calendar == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "calendar service is not configured",
		})
		return
	}

	path := normalizePath(r.URL.Path)
	switch path {
	case "resources":
		switch r.Method {
		case http.MethodGet:
			h.handleListResources(w, r)
		case http.MethodPost:
			h.handleAddResource(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	case "events":
		switch r.Method {
		case http.MethodGet:
			h.handleListEvents(w, r)
		case http.MethodPost:
			h.handleCreateEvent(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	case "grid":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleMonthGrid(w, r)
		return
	}

	if id, ok := resolveID(path, "resources/", ""); ok {
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handleRenameResource(w, r, id)
		return
	}
	if id, ok := resolveID(path, "events/", "/move"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveEvent(w, r, id)
		return
	}
	if id, ok := resolveID(path, "events/", "/resize"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleResizeEvent(w, r, id)
		return
	}
	if id, ok := resolveID(path, "events/", ""); ok {
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		h.handleDeleteEvent(w, r, id)
		return
	}

	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// handleListResources serves GET `/resources`.
func (h *Handler) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.calendar.ListResources(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resources": resources,
	})
}

// handleAddResource serves POST `/resources`. The body is optional.
func (h *Handler) handleAddResource(w http.ResponseWriter, r *http.Request) {
	var req common.AddResourceRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	resource, err := h.calendar.AddResource(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

// handleRenameResource serves PATCH `/resources/{id}`.
func (h *Handler) handleRenameResource(w http.ResponseWriter, r *http.Request, resourceID string) {
	var req common.RenameResourceRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.ResourceID = resourceID
	resource, err := h.calendar.RenameResource(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// handleListEvents serves GET `/events`.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	req := common.ListEventsRequest{
		Month:      strings.TrimSpace(r.URL.Query().Get("month")),
		ResourceID: strings.TrimSpace(r.URL.Query().Get("resource_id")),
	}
	events, err := h.calendar.ListEvents(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
	})
}

// handleCreateEvent serves POST `/events`.
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req common.CreateEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	event, err := h.calendar.CreateEvent(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// handleMoveEvent serves POST `/events/{id}/move`.
func (h *Handler) handleMoveEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var req common.MoveEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.EventID = eventID
	event, err := h.calendar.MoveEvent(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleResizeEvent serves POST `/events/{id}/resize`.
func (h *Handler) handleResizeEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var req common.ResizeEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.EventID = eventID
	event, err := h.calendar.ResizeEvent(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleDeleteEvent serves DELETE `/events/{id}`.
func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	if err := h.calendar.DeleteEvent(r.Context(), common.DeleteEventRequest{EventID: eventID}); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMonthGrid serves GET `/grid`.
func (h *Handler) handleMonthGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := h.calendar.MonthGrid(r.Context(), common.MonthGridRequest{
		Month: r.URL.Query().Get("month"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// resolveID parses `{prefix}{id}{suffix}` and returns `{id}`.
func resolveID(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrRejected):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "rejected",
			Message: err.Error(),
			Hint:    "An event's start date must not fall after its end date.",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if err == nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request canceled: %w", ctx.Err())
		default:
			return nil
		}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
}
