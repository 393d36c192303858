package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"relief-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 10 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is returned by endpoints that only report success
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is the shelter and registration style acknowledgement
type StatusResponse struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Detail: message})
}

// respondServiceError maps a service error kind to its HTTP status. Errors
// without a kind are logged and hidden behind a generic 500.
func respondServiceError(w http.ResponseWriter, err error, op string) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Error().Err(err).Str("op", op).Msg("Request failed")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Msg("Request failed")
	}

	respondError(w, svcErr.Message, status)
}

// form wraps query or form values and collects the first parse error
type form struct {
	values map[string][]string
	err    error
}

func newForm(values map[string][]string) *form {
	return &form{values: values}
}

func (f *form) get(name string) string {
	if v := f.values[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (f *form) has(name string) bool {
	return f.get(name) != ""
}

func (f *form) requiredString(name string) string {
	v := f.get(name)
	if v == "" && f.err == nil {
		f.err = fmt.Errorf("%s is required", name)
	}
	return v
}

func (f *form) optionalString(name string) *string {
	if !f.has(name) {
		return nil
	}
	v := f.get(name)
	return &v
}

func (f *form) requiredFloat(name string) float64 {
	raw := f.get(name)
	if raw == "" {
		if f.err == nil {
			f.err = fmt.Errorf("%s is required", name)
		}
		return 0
	}
	return f.parseFloat(name, raw)
}

func (f *form) optionalFloat(name string) *float64 {
	raw := f.get(name)
	if raw == "" {
		return nil
	}
	v := f.parseFloat(name, raw)
	return &v
}

func (f *form) floatOr(name string, fallback float64) float64 {
	raw := f.get(name)
	if raw == "" {
		return fallback
	}
	return f.parseFloat(name, raw)
}

func (f *form) intOr(name string, fallback int) int {
	raw := f.get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s must be an integer", name)
	}
	return v
}

// parseFloat accepts finite numbers only. Fields named like a latitude or
// longitude are also range checked.
func (f *form) parseFloat(name, raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.fail(fmt.Errorf("%s must be a number", name))
		return 0
	}

	key := strings.ToLower(name)
	switch {
	case strings.HasSuffix(key, "latitude") && (v < -90 || v > 90):
		f.fail(fmt.Errorf("%s must be between -90 and 90", name))
	case strings.HasSuffix(key, "longitude") && (v < -180 || v > 180):
		f.fail(fmt.Errorf("%s must be between -180 and 180", name))
	}
	return v
}

func (f *form) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// parseUpload parses a multipart body, falling back to a url-encoded one
func parseUpload(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// readImage returns the "image" part, or nil when none was sent
func readImage(r *http.Request) (*services.Image, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return &services.Image{Filename: header.Filename, Data: data}, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return id, nil
}
