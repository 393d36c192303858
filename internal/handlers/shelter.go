package handlers

import (
	"net/http"

	"relief-backend/internal/middleware"
	"relief-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ShelterHandler handles shelter HTTP requests
type ShelterHandler struct {
	shelters *services.ShelterService
}

// NewShelterHandler creates a new shelter handler
func NewShelterHandler(shelters *services.ShelterService) *ShelterHandler {
	return &ShelterHandler{shelters: shelters}
}

// List handles GET /shelters/get-shelters
func (h *ShelterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newForm(r.URL.Query())
	latitude := q.requiredFloat("latitude")
	longitude := q.requiredFloat("longitude")
	dist := q.requiredFloat("dist")
	if q.err != nil {
		respondError(w, q.err.Error(), http.StatusBadRequest)
		return
	}

	shelters, err := h.shelters.ListNearby(r.Context(), latitude, longitude, dist)
	if err != nil {
		respondServiceError(w, err, "list shelters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"shelters": shelters})
}

// Create handles POST /shelters/add
func (h *ShelterHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := parseUpload(r); err != nil {
		respondError(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	f := newForm(r.Form)
	in := services.ShelterInput{
		Name:          f.requiredString("name"),
		Address:       f.requiredString("address"),
		Pincode:       f.requiredString("pincode"),
		Description:   f.optionalString("description"),
		Latitude:      f.requiredFloat("latitude"),
		Longitude:     f.requiredFloat("longitude"),
		UserLatitude:  f.requiredFloat("userLatitude"),
		UserLongitude: f.requiredFloat("userLongitude"),
	}
	if f.err != nil {
		respondError(w, f.err.Error(), http.StatusBadRequest)
		return
	}

	img, err := readImage(r)
	if err != nil {
		respondError(w, "Invalid image upload", http.StatusBadRequest)
		return
	}

	shelter, err := h.shelters.Create(r.Context(), user, in, img)
	if err != nil {
		respondServiceError(w, err, "create shelter")
		return
	}

	log.Info().
		Int64("shelter_id", shelter.ID).
		Int64("user_id", user.ID).
		Msg("Shelter created")

	respondJSON(w, http.StatusOK, StatusResponse{Status: http.StatusOK, Detail: "Shelter added successfully"})
}

// ListMine handles GET /shelters/get-shelters-by-user
func (h *ShelterHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	shelters, err := h.shelters.ListMine(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err, "list user shelters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"shelters": shelters})
}

// Update handles PUT /shelters/update/{id}
func (h *ShelterHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := parseUpload(r); err != nil {
		respondError(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	f := newForm(r.Form)
	in := services.ShelterInput{
		Name:        f.requiredString("name"),
		Address:     f.requiredString("address"),
		Pincode:     f.requiredString("pincode"),
		Description: f.optionalString("description"),
		Latitude:    f.requiredFloat("latitude"),
		Longitude:   f.requiredFloat("longitude"),
	}
	if f.err != nil {
		respondError(w, f.err.Error(), http.StatusBadRequest)
		return
	}

	img, err := readImage(r)
	if err != nil {
		respondError(w, "Invalid image upload", http.StatusBadRequest)
		return
	}

	if _, err := h.shelters.Update(r.Context(), user, id, in, img); err != nil {
		respondServiceError(w, err, "update shelter")
		return
	}

	log.Info().Int64("shelter_id", id).Int64("user_id", user.ID).Msg("Shelter updated")

	respondJSON(w, http.StatusOK, StatusResponse{Status: http.StatusOK, Detail: "Shelter updated successfully"})
}

// Delete handles DELETE /shelters/delete/{id}
func (h *ShelterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.shelters.Delete(r.Context(), user, id); err != nil {
		respondServiceError(w, err, "delete shelter")
		return
	}

	log.Info().Int64("shelter_id", id).Int64("user_id", user.ID).Msg("Shelter deleted")

	respondJSON(w, http.StatusOK, StatusResponse{Status: http.StatusOK, Detail: "Shelter deleted successfully"})
}
