package handlers

import (
	"fmt"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/config"
	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	"github.com/go-chi/chi/v5"
)

// Mount registers all routes on r. NotFound and MethodNotAllowed are set
// before the API subrouter is mounted so it inherits them.
func (h *Handler) Mount(r chi.Router) {
	r.NotFound(h.RouteNotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	api := func(r chi.Router) {
		r.Get("/", h.APIInfo)
		r.Get("/health", h.HealthCheck)

		// Static segments are matched before {name}
		r.Get("/weapons", h.GetWeapons)
		r.Get("/weapons/stats", h.GetWeaponStats)
		r.Get("/weapons/search", h.SearchWeapons)
		r.Get("/weapons/{name}", h.GetWeapon)
		r.Get("/weapons/{name}/efficiency", h.GetWeaponEfficiency)
	}

	if h.prefix == "" {
		r.Group(api)
		return
	}

	r.Get("/", h.Welcome)
	r.Route(h.prefix, api)
}

// Endpoints lists the routes served, for startup output
func (h *Handler) Endpoints() []string {
	return []string{
		"GET  " + h.prefix + "/health",
		"GET  " + h.prefix + "/weapons",
		"GET  " + h.prefix + "/weapons/stats",
		"GET  " + h.prefix + "/weapons/search?q=:query",
		"GET  " + h.prefix + "/weapons/{name}",
		"GET  " + h.prefix + "/weapons/{name}/efficiency",
	}
}

// Welcome describes the service at the root path
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Welcome to Freedom Libraries API",
		"version":       config.Version,
		"documentation": fmt.Sprintf("%s%s/health", baseURL(r), h.prefix),
		"endpoints": map[string]string{
			"health":        h.prefix + "/health",
			"weapons":       h.prefix + "/weapons",
			"weaponByName":  h.prefix + "/weapons/:name",
			"searchWeapons": h.prefix + "/weapons/search?q=:query",
		},
	})
}

// APIInfo lists the API endpoints with example URLs
func (h *Handler) APIInfo(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r) + h.prefix

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Freedom Libraries API",
		"version": config.Version,
		"endpoints": map[string]interface{}{
			"health": "/health",
			"weapons": map[string]string{
				"listAll":    "/weapons",
				"getByName":  "/weapons/:name",
				"search":     "/weapons/search?q=:query",
				"stats":      "/weapons/stats",
				"efficiency": "/weapons/:name/efficiency",
			},
		},
		"examples": map[string]string{
			"getAllWeapons":     base + "/weapons",
			"getSpecificWeapon": base + "/weapons/minigun",
			"searchWeapons":     base + "/weapons/search?q=rifle",
			"getStats":          base + "/weapons/stats",
		},
	})
}

// RouteNotFound responds to unmatched routes with the available endpoints
func (h *Handler) RouteNotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, models.RouteNotFoundResponse{
		Error:   "Route not found",
		Message: fmt.Sprintf("The requested endpoint %s does not exist", r.URL.RequestURI()),
		AvailableEndpoints: []string{
			h.prefix + "/health",
			h.prefix + "/weapons",
			h.prefix + "/weapons/:name",
		},
	})
}

// MethodNotAllowed responds to known paths requested with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "method not allowed", nil, false)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
