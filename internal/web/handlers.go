package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/ops"
)

// Handlers contains the HTTP route handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	version string
}

// HandleHealth handles GET /healthz. It reports unhealthy when the database
// cannot be reached.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "version": h.version})
		return
	}
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// HandleList handles GET /records?status=&limit=&offset=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleDetail handles GET /records/{card_id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	cardID, err := ops.ParseID("card_id", r.PathValue("card_id"))
	if err != nil {
		renderError(w, err)
		return
	}
	result, err := ops.Show(r.Context(), h.db, cardID)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleRoles handles GET /records/{card_id}/roles.
func (h *Handlers) HandleRoles(w http.ResponseWriter, r *http.Request) {
	cardID, err := ops.ParseID("card_id", r.PathValue("card_id"))
	if err != nil {
		renderError(w, err)
		return
	}
	result, err := ops.PreviewRoles(r.Context(), h.db, h.cfg.Roles, cardID)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleLookup handles GET /members/{user_id}/record.
func (h *Handlers) HandleLookup(w http.ResponseWriter, r *http.Request) {
	userID, err := ops.ParseID("user_id", r.PathValue("user_id"))
	if err != nil {
		renderError(w, err)
		return
	}
	result, err := ops.Lookup(r.Context(), h.db, userID)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
