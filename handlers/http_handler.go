// Package handlers provides HTTP request handlers for the interactions API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/session"
)

// Request limits
const (
	MaxPrescriptionSize = 50
	MaxNoteLength       = 1000
	MaxSymptomsLength   = 500
	MaxAllergies        = 20
)

var errTooManyDrugs = fmt.Errorf("too many drugs: maximum %d per prescription", MaxPrescriptionSize)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	catalog   interfaces.CatalogStore
	sessions  *session.Store
	patients  interfaces.PatientDirectory
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	catalog interfaces.CatalogStore,
	sessions *session.Store,
	patients interfaces.PatientDirectory,
	validator interfaces.InputValidator,
	health interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		catalog:   catalog,
		sessions:  sessions,
		patients:  patients,
		validator: validator,
		health:    health,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// decodeBody decodes a JSON request body into dst and writes a 400 on failure.
// Returns false when the request has been answered.
func (h *HTTPHandlerImpl) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		h.RespondWithError(w, http.StatusBadRequest, "Missing request body")
		return false
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			h.RespondWithError(w, http.StatusBadRequest, "Missing request body")
		default:
			logging.Warn("Invalid JSON body", "path", r.URL.Path, "error", err)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		}
		return false
	}
	return true
}

// HealthCheck returns the catalog and session health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()
	h.RespondWithJSON(w, httpStatus, HealthResponse{Status: status, Data: data})
}

// urlParam returns the decoded chi route parameter. chi matches on the raw path
// when the request carries escaped characters, so accented names arrive encoded.
func urlParam(r *http.Request, key string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, key))
}
