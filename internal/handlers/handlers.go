package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/config"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/db"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/repository"
	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxQueryLength = 100

// QueryRecorder records served queries
type QueryRecorder interface {
	LogQuery(ctx context.Context, log *db.QueryLog) error
	Ping(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store      repository.WeaponStore
	queryLog   QueryRecorder
	prefix     string
	env        string
	production bool
	startedAt  time.Time
}

// NewHandler creates a new handler with dependencies. queryLog may be nil.
func NewHandler(store repository.WeaponStore, server config.ServerConfig, queryLog QueryRecorder) *Handler {
	return &Handler{
		store:      store,
		queryLog:   queryLog,
		prefix:     server.APIPrefix,
		env:        server.Environment,
		production: server.IsProduction(),
		startedAt:  time.Now(),
	}
}

// HealthCheck reports process uptime, memory usage and dataset state
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(h.startedAt)

	resp := map[string]interface{}{
		"success":   true,
		"timestamp": time.Now().UTC(),
		"uptime":    formatUptime(uptime),
		"memory": map[string]string{
			"rss":       formatMB(mem.Sys),
			"heapTotal": formatMB(mem.HeapSys),
			"heapUsed":  formatMB(mem.HeapAlloc),
		},
		"environment": h.env,
		"version":     config.Version,
		"dataset":     h.store.LoadInfo(),
	}

	if h.queryLog != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp["queryLog"] = "connected"
		if err := h.queryLog.Ping(ctx); err != nil {
			log.Printf("⚠️  Query log ping failed: %v", err)
			resp["queryLog"] = "unreachable"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetWeapons returns every weapon
func (h *Handler) GetWeapons(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	weapons, err := h.store.GetAll(r.Context())
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	h.recordQuery(r, db.QueryTypeList, "", len(weapons), http.StatusOK, start)
	respondJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Count:   len(weapons),
		Data:    weapons,
	})
}

// GetWeapon returns the weapon whose id or name matches {name}
func (h *Handler) GetWeapon(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	weapon, err := h.store.GetByName(r.Context(), name)
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	if weapon == nil {
		h.recordQuery(r, db.QueryTypeLookup, name, 0, http.StatusNotFound, start)
		respondJSON(w, http.StatusNotFound, models.MessageResponse{
			Success: false,
			Message: fmt.Sprintf("Weapon '%s' not found", name),
		})
		return
	}

	h.recordQuery(r, db.QueryTypeLookup, name, 1, http.StatusOK, start)
	respondJSON(w, http.StatusOK, models.DataResponse{
		Success: true,
		Data:    weapon,
	})
}

// SearchWeapons returns weapons whose id or name contains q
// Query params: q (required, 1-100 characters, matched as sent)
func (h *Handler) SearchWeapons(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query, ok := validateSearchQuery(r.URL.Query().Get("q"))
	if !ok {
		respondJSON(w, http.StatusBadRequest, models.MessageResponse{
			Success: false,
			Message: fmt.Sprintf(`Search query parameter "q" is required and must be 1-%d characters`, maxQueryLength),
		})
		return
	}

	weapons, err := h.store.Search(r.Context(), query)
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	h.recordQuery(r, db.QueryTypeSearch, query, len(weapons), http.StatusOK, start)
	respondJSON(w, http.StatusOK, models.SearchResponse{
		Success: true,
		Query:   query,
		Count:   len(weapons),
		Data:    weapons,
	})
}

// GetWeaponStats returns aggregate statistics
func (h *Handler) GetWeaponStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	h.recordQuery(r, db.QueryTypeStats, "", stats.Total, http.StatusOK, start)
	respondJSON(w, http.StatusOK, models.DataResponse{
		Success: true,
		Data:    stats,
	})
}

// GetWeaponEfficiency returns the damage efficiency of a single weapon
func (h *Handler) GetWeaponEfficiency(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	eff, err := h.store.Efficiency(r.Context(), name)
	if err != nil {
		h.respondLoadError(w, err)
		return
	}

	if eff == nil {
		h.recordQuery(r, db.QueryTypeEfficiency, name, 0, http.StatusNotFound, start)
		respondJSON(w, http.StatusNotFound, models.MessageResponse{
			Success: false,
			Message: fmt.Sprintf("Weapon '%s' not found", name),
		})
		return
	}

	h.recordQuery(r, db.QueryTypeEfficiency, name, 1, http.StatusOK, start)
	respondJSON(w, http.StatusOK, models.DataResponse{
		Success: true,
		Data:    eff,
	})
}

// Helper functions

// validateSearchQuery checks the length of q. q is returned unchanged so a
// leading or trailing space stays part of the search term.
func validateSearchQuery(q string) (string, bool) {
	if q == "" || utf8.RuneCountInString(q) > maxQueryLength {
		return "", false
	}
	return q, true
}

func formatUptime(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func formatMB(bytes uint64) string {
	return fmt.Sprintf("%d MB", (bytes+(1<<19))>>20)
}

func (h *Handler) recordQuery(r *http.Request, queryType, text string, count, status int, start time.Time) {
	if h.queryLog == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := h.queryLog.LogQuery(ctx, &db.QueryLog{
		RequestID:   chimiddleware.GetReqID(r.Context()),
		QueryType:   queryType,
		QueryText:   text,
		ResultCount: count,
		LatencyMs:   int(time.Since(start).Milliseconds()),
		Status:      status,
	})
	if err != nil {
		log.Printf("⚠️  Query log failed: %v", err)
	}
}

func (h *Handler) respondLoadError(w http.ResponseWriter, err error) {
	respondError(w, http.StatusInternalServerError, "failed to load weapons", err, !h.production)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error, withDetail bool) {
	errResp := models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		log.Printf("❌ error: %s - %v", message, err)
		if withDetail {
			errResp.Detail = err.Error()
		}
	}

	respondJSON(w, status, errResp)
}
