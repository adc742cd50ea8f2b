package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/models"
	"github.com/evyataryagoni/ipenrich/internal/service"
	"github.com/go-playground/validator/v10"
)

const (
	// maxRequestBytes caps the request body
	maxRequestBytes = 1 << 20

	msgInvalidJSON = "Invalid JSON body"
)

// LookupHandler handles HTTP requests for batch enrichment
//
// Responsibilities:
//   - Decode and validate the request body
//   - Apply the configured default access token
//   - Map batch errors to HTTP status codes
//   - NO business logic (that's in the service layer)
type LookupHandler struct {
	service      *service.LookupService
	defaultToken string
	validator    *validator.Validate
	log          *logger.Logger
}

// NewLookupHandler creates a new lookup handler
// defaultToken is used when a request carries no access token
func NewLookupHandler(svc *service.LookupService, defaultToken string, log *logger.Logger) *LookupHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LookupHandler{
		service:      svc,
		defaultToken: defaultToken,
		validator:    validator.New(),
		log:          log.WithComponent("LookupHandler"),
	}
}

// Lookup handles POST /v1/lookup
//
//	200 [{entity, data}]   one row per eligible identifier
//	400 [OptionError]      unusable options
//	400 ErrorResponse      malformed body
//	429 BatchError         provider rate limit
//	502 BatchError         provider transport failure
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRequest
	if !h.decode(w, r, &req) {
		h.respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	if strings.TrimSpace(req.Options.AccessToken) == "" {
		req.Options.AccessToken = h.defaultToken
	}
	if optionErrs := h.service.ValidateOptions(req.Options); len(optionErrs) > 0 {
		h.respondJSON(w, http.StatusBadRequest, optionErrs)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	results, err := h.service.DoLookup(r.Context(), req.Entities, req.Options)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, results)
}

// ValidateOptions handles POST /v1/validate-options
// Always 200; the body lists the problems (empty when the options are usable)
func (h *LookupHandler) ValidateOptions(w http.ResponseWriter, r *http.Request) {
	var opts models.LookupOptions
	if !h.decode(w, r, &opts) {
		h.respondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.ValidateOptions(opts))
}

func (h *LookupHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst); err != nil {
		h.log.Debug().Err(err).Msg("Rejected request body")
		return false
	}
	return true
}

func (h *LookupHandler) respondLookupError(w http.ResponseWriter, err error) {
	var batchErr *models.BatchError
	switch {
	case errors.As(err, &batchErr):
		status := http.StatusBadGateway
		if batchErr.HTTPStatus == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
		h.respondJSON(w, status, batchErr)
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "Lookup timed out")
	case errors.Is(err, context.Canceled):
		// client went away; nobody is reading the response
		h.log.Debug().Msg("Lookup cancelled by client")
	default:
		h.log.Error().Err(err).Msg("Lookup failed")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondJSON writes a JSON response with the given status code
func (h *LookupHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error response with consistent formatting
func (h *LookupHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
