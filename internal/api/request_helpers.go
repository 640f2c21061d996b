package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/domain"
)

// OptionalID is a tri-state JSON field for nullable ID references: absent
// (Set false), explicit null (Set true, Value nil), or a value. It lets
// PATCH-style updates distinguish "leave alone" from "clear".
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON implements json.Unmarshaler for OptionalID.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// getIdentityFromContext extracts the authenticated identity placed in the
// request context by the authentication middleware.
func getIdentityFromContext(r *http.Request) (domain.Identity, bool) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok || identity.ID == 0 {
		return domain.Identity{}, false
	}
	return identity, true
}

// getPathID extracts a numeric ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}

	return id, nil
}

// queryInt parses an optional integer query parameter, returning def when
// absent and an error when malformed.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidID)
	}
	return v, nil
}

// queryID parses an optional ID query parameter, returning nil when absent.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, domain.NewValidationError(name, "must be a positive integer", domain.ErrInvalidID)
	}
	return &v, nil
}

// HandleAPIError writes a sanitized error response for a service or store
// error, logging the underlying cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
