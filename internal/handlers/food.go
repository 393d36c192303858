package handlers

import (
	"net/http"

	"relief-backend/internal/middleware"
	"relief-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// FoodHandler handles food region HTTP requests
type FoodHandler struct {
	food *services.FoodService
}

// NewFoodHandler creates a new food handler
func NewFoodHandler(food *services.FoodService) *FoodHandler {
	return &FoodHandler{food: food}
}

// List handles GET /food
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newForm(r.URL.Query())
	latitude := q.requiredFloat("latitude")
	longitude := q.requiredFloat("longitude")
	dist := q.floatOr("dist", services.DefaultFoodRadiusKm)
	if q.err != nil {
		respondError(w, q.err.Error(), http.StatusBadRequest)
		return
	}

	regions, err := h.food.ListNearby(r.Context(), latitude, longitude, dist)
	if err != nil {
		respondServiceError(w, err, "list food regions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"food": regions})
}

// Create handles POST /food/add
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := parseUpload(r); err != nil {
		respondError(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	f := newForm(r.Form)
	in := services.FoodInput{
		Address:       f.requiredString("address"),
		Pincode:       f.requiredString("pincode"),
		Description:   f.optionalString("description"),
		Latitude:      f.requiredFloat("latitude"),
		Longitude:     f.requiredFloat("longitude"),
		UserLatitude:  f.optionalFloat("userLatitude"),
		UserLongitude: f.optionalFloat("userLongitude"),
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

	region, err := h.food.Create(r.Context(), user, in, img)
	if err != nil {
		respondServiceError(w, err, "create food region")
		return
	}

	log.Info().Int64("food_id", region.ID).Int64("user_id", user.ID).Msg("Food region created")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Food providing region added successfully",
		"food":    region,
	})
}

// ListMine handles GET /food/get-food-regions
func (h *FoodHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	regions, err := h.food.ListMine(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err, "list user food regions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"food": regions})
}

// Update handles PUT /food/update/{id}. Any authenticated user may update.
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	in := services.FoodInput{
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

	region, err := h.food.Update(r.Context(), id, in, img)
	if err != nil {
		respondServiceError(w, err, "update food region")
		return
	}

	log.Info().
		Int64("food_id", id).
		Int64("user_id", middleware.UserFrom(r.Context()).ID).
		Msg("Food region updated")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Food providing region updated successfully",
		"food":    region,
	})
}

// Delete handles DELETE /food/delete/{id}. Any authenticated user may delete.
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.food.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "delete food region")
		return
	}

	log.Info().
		Int64("food_id", id).
		Int64("user_id", middleware.UserFrom(r.Context()).ID).
		Msg("Food region deleted")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Food providing region deleted successfully"})
}
