package api

import (
	"net/http"
)

// BadgesHandler lists the active badge catalog.
type BadgesHandler struct {
	deps Dependencies
}

// NewBadgesHandler creates a new badges handler.
func NewBadgesHandler(deps Dependencies) *BadgesHandler {
	return &BadgesHandler{deps: deps}
}

// HandleList handles GET /v1/badges requests.
func (h *BadgesHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, badgesResponse{Badges: h.deps.Catalog().Definitions()})
}
