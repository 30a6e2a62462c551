package audit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/adesina-femi/staffcore/internal/web"
)

// Controller serves the read-only audit log query endpoint.
type Controller struct {
	Store Store
}

func (c Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			web.WriteError(w, r, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := c.Store.List(r.Context(), Filter{
		Entity:   q.Get("entity"),
		EntityID: q.Get("entity_id"),
		Actor:    q.Get("actor"),
		Limit:    limit,
	})
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
