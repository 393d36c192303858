package handlers

import (
	"net/http"

	"relief-backend/internal/middleware"
	"relief-backend/internal/services"
)

// SOSHandler handles SOS HTTP requests
type SOSHandler struct {
	sos *services.SOSService
}

// NewSOSHandler creates a new SOS handler
func NewSOSHandler(sos *services.SOSService) *SOSHandler {
	return &SOSHandler{sos: sos}
}

// RaiseResponse echoes the submitted alert
type RaiseResponse struct {
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Persons   *int    `json:"persons"`
}

// Raise handles POST /sos/sos. Authentication is optional.
func (h *SOSHandler) Raise(w http.ResponseWriter, r *http.Request) {
	q := newForm(r.URL.Query())
	latitude := q.requiredFloat("latitude")
	longitude := q.requiredFloat("longitude")
	var persons *int
	if q.has("persons") {
		n := q.intOr("persons", 0)
		persons = &n
	}
	if q.err != nil {
		respondError(w, q.err.Error(), http.StatusBadRequest)
		return
	}

	count := 0
	if persons != nil {
		count = *persons
	}

	if _, err := h.sos.Raise(r.Context(), middleware.IdentityFrom(r.Context()), count, latitude, longitude); err != nil {
		respondServiceError(w, err, "raise sos")
		return
	}

	respondJSON(w, http.StatusOK, RaiseResponse{
		Message:   "🚨 SOS request sent successfully!",
		Latitude:  latitude,
		Longitude: longitude,
		Persons:   persons,
	})
}

// ListActive handles GET /sos/all
func (h *SOSHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	q := newForm(r.URL.Query())
	query := services.SOSQuery{
		AdminLatitude:  q.optionalFloat("admin_latitude"),
		AdminLongitude: q.optionalFloat("admin_longitude"),
		Radius:         q.floatOr("radius", services.DefaultSOSRadiusKm),
		StartDate:      q.get("start_date"),
		EndDate:        q.get("end_date"),
	}
	if q.err != nil {
		respondError(w, q.err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := h.sos.ListActive(r.Context(), query)
	if err != nil {
		respondServiceError(w, err, "list sos")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"sos_alerts": alerts})
}

// Resolve handles PUT /sos/resolve/{id}
func (h *SOSHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.sos.Resolve(r.Context(), id); err != nil {
		respondServiceError(w, err, "resolve sos")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "SOS alert resolved successfully"})
}

// ListResolved handles GET /sos/resolved
func (h *SOSHandler) ListResolved(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.sos.ListResolved(r.Context())
	if err != nil {
		respondServiceError(w, err, "list resolved sos")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"sos_alerts": alerts})
}
