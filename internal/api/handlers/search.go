package handlers

import (
	"net/http"
	"strings"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"
)

// SearchHandler previews a geocode lookup without touching any itinerary.
// With ?session=<id> a provider failure is notified on that session.
type SearchHandler struct {
	Sessions *services.Sessions
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	var (
		place domain.Place
		err   error
	)
	if id := r.URL.Query().Get("session"); id != "" {
		p, getErr := h.Sessions.Get(id)
		if getErr != nil {
			writeServiceError(w, r, getErr)
			return
		}
		place, err = p.Search(r.Context(), q)
	} else {
		place, err = h.Sessions.Search(r.Context(), q)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPlaceResponse(place))
}
