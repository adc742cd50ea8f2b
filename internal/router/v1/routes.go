package v1

import (
	"github.com/evyataryagoni/ipenrich/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the /v1 endpoints on r
func SetupRoutes(r chi.Router, lookupHandler *handler.LookupHandler) {
	// POST /v1/lookup
	r.Post("/lookup", lookupHandler.Lookup)

	// POST /v1/validate-options
	r.Post("/validate-options", lookupHandler.ValidateOptions)
}
