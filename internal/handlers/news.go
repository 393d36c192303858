package handlers

import (
	"net/http"

	"relief-backend/internal/middleware"
	"relief-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// NewsHandler handles news HTTP requests
type NewsHandler struct {
	news *services.NewsService
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(news *services.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// List handles GET /news
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newForm(r.URL.Query())
	latitude := q.requiredFloat("latitude")
	longitude := q.requiredFloat("longitude")
	distance := q.floatOr("distance", services.DefaultNewsRadiusKm)
	if q.err != nil {
		respondError(w, q.err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.news.ListNearby(r.Context(), latitude, longitude, distance)
	if err != nil {
		respondServiceError(w, err, "list news")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"news": items, "count": len(items)})
}

// Create handles POST /news/add
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	in, ok := h.parseInput(w, r)
	if !ok {
		return
	}

	img, err := readImage(r)
	if err != nil {
		respondError(w, "Invalid image upload", http.StatusBadRequest)
		return
	}

	item, err := h.news.Create(r.Context(), user, in, img)
	if err != nil {
		respondServiceError(w, err, "create news")
		return
	}

	log.Info().Int64("news_id", item.ID).Int64("user_id", user.ID).Msg("News created")

	respondJSON(w, http.StatusOK, map[string]interface{}{"message": "News added successfully", "news": item})
}

// ListMine handles GET /news/mynews
func (h *NewsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.ListMine(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err, "list user news")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"news": items, "count": len(items)})
}

// Update handles PUT /news/update/{id}
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	in, ok := h.parseInput(w, r)
	if !ok {
		return
	}

	img, err := readImage(r)
	if err != nil {
		respondError(w, "Invalid image upload", http.StatusBadRequest)
		return
	}

	item, err := h.news.Update(r.Context(), user, id, in, img)
	if err != nil {
		respondServiceError(w, err, "update news")
		return
	}

	log.Info().Int64("news_id", id).Int64("user_id", user.ID).Msg("News updated")

	respondJSON(w, http.StatusOK, map[string]interface{}{"message": "News updated successfully", "news": item})
}

// Delete handles DELETE /news/delete/{id}
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.news.Delete(r.Context(), user, id); err != nil {
		respondServiceError(w, err, "delete news")
		return
	}

	log.Info().Int64("news_id", id).Int64("user_id", user.ID).Msg("News deleted")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "News deleted successfully"})
}

func (h *NewsHandler) parseInput(w http.ResponseWriter, r *http.Request) (services.NewsInput, bool) {
	if err := parseUpload(r); err != nil {
		respondError(w, "Invalid form data", http.StatusBadRequest)
		return services.NewsInput{}, false
	}

	f := newForm(r.Form)
	in := services.NewsInput{
		Title:       f.requiredString("title"),
		Description: f.requiredString("description"),
		Latitude:    f.requiredFloat("latitude"),
		Longitude:   f.requiredFloat("longitude"),
	}
	if f.err != nil {
		respondError(w, f.err.Error(), http.StatusBadRequest)
		return services.NewsInput{}, false
	}
	return in, true
}
