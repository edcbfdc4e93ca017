package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spaolacci/murmur3"

	"sms-storefront/internal/service"
	"sms-storefront/internal/util"
)

const catalogSourceHeader = "X-Catalog-Source"

type countryUpdateRequest struct {
	ID        *int  `json:"id"`
	Available *bool `json:"available"`
}

// ListCountries always answers 200, degrading to the built-in list.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, source := h.catalog.Countries(r.Context())
	h.respondWithCatalog(w, r, countries, source)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, source := h.catalog.Services(r.Context())
	h.respondWithCatalog(w, r, services, source)
}

// respondWithCatalog tags the list with a content hash so clients can
// revalidate with If-None-Match.
func (h *Handler) respondWithCatalog(w http.ResponseWriter, r *http.Request, data interface{}, source string) {
	body, err := json.Marshal(data)
	if err != nil {
		h.respondWithError(w, err, "Failed to encode catalog")
		return
	}
	etag := fmt.Sprintf(`"%016x"`, murmur3.Sum64(body))

	w.Header().Set(catalogSourceHeader, source)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Debug("Failed to write catalog response", util.ErrorField(err))
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (h *Handler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	var req countryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err, "")
		return
	}
	if req.ID == nil || req.Available == nil {
		h.respondWithError(w, &service.ValidationError{Message: "Missing required fields"}, "")
		return
	}

	country, err := h.catalog.SetCountryAvailability(r.Context(), *req.ID, *req.Available)
	if err != nil {
		h.respondWithError(w, err, "Failed to update country")
		return
	}

	h.logger.Info("Country availability updated",
		util.Int("country_id", country.ID),
		util.Bool("available", country.Available),
	)
	h.respondWithJSON(w, http.StatusOK, country)
}

// Seed repopulates the catalog tables from the built-in lists.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.AuthorizeSeed(r.URL.Query().Get("key")); err != nil {
		h.respondWithError(w, err, "")
		return
	}

	result, err := h.catalog.Seed(r.Context())
	if err != nil {
		h.respondWithError(w, err, "Failed to seed database")
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}
