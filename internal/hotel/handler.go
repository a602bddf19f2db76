package hotel

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/auth"
	"github.com/hotelstock/hotel-stock-api/internal/httputil"
	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/validation"
)

const maxPhotoSize = 2 << 20 // 2 MB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// Handler contains HTTP handlers for hotel endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// hotelRequest is the JSON request body for create and update. The
// price is a pointer so an omitted field fails validation instead of
// silently becoming zero.
type hotelRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	PricePerNight *float64 `json:"price_per_night"`
	Address       string   `json:"address"`
	PhoneNumber   string   `json:"phone_number"`
	Currency      string   `json:"currency"`
	IsActive      *bool    `json:"is_active"`
}

// HotelResponse wraps a hotel in a create/update response.
type HotelResponse struct {
	Message string `json:"message"`
	Hotel   *Hotel `json:"hotel"`
}

// ListOwn returns the authenticated user's hotels
// @Summary      List own hotels
// @Tags         hotels
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Hotel
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /hotels [get]
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	hotels, err := h.service.ListOwn(r.Context(), current.ID)
	if err != nil {
		logger.Error("failed to list hotels", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list hotels", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, hotels, http.StatusOK)
}

// ListPublic returns all hotels without authentication
// @Summary      Public hotel listing
// @Tags         hotels
// @Produce      json
// @Success      200 {array} Hotel
// @Router       /hotels-public [get]
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	hotels, err := h.service.ListPublic(r.Context())
	if err != nil {
		logger.Error("failed to list public hotels", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list hotels", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, hotels, http.StatusOK)
}

// Get returns a single hotel owned by the authenticated user
// @Summary      Get hotel
// @Tags         hotels
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Hotel ID"
// @Success      200 {object} Hotel
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /hotels/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	hotelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "hotel not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	found, err := h.service.Get(r.Context(), current.ID, hotelID)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}

// Create stores a new hotel for the authenticated user
// @Summary      Create hotel
// @Tags         hotels
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} HotelResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /hotels [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	in, photo, err := parseHotelRequest(r)
	if err != nil {
		var v validation.Errors
		if errors.As(err, &v) {
			httputil.RespondValidationErrors(w, v)
			return
		}
		logger.Warn("invalid hotel request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), current.ID, in, photo)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("hotel created", "hotel_id", created.ID, "user_id", current.ID)

	httputil.RespondJSON(w, HotelResponse{
		Message: "Hotel created successfully.",
		Hotel:   created,
	}, http.StatusCreated)
}

// Update modifies a hotel owned by the authenticated user
// @Summary      Update hotel
// @Tags         hotels
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Hotel ID"
// @Success      200 {object} HotelResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /hotels/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	hotelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "hotel not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	in, photo, err := parseHotelRequest(r)
	if err != nil {
		var v validation.Errors
		if errors.As(err, &v) {
			httputil.RespondValidationErrors(w, v)
			return
		}
		logger.Warn("invalid hotel request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), current.ID, hotelID, in, photo)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("hotel updated", "hotel_id", updated.ID, "user_id", current.ID)

	httputil.RespondJSON(w, HotelResponse{
		Message: "Hotel updated successfully.",
		Hotel:   updated,
	}, http.StatusOK)
}

// Delete removes a hotel owned by the authenticated user
// @Summary      Delete hotel
// @Tags         hotels
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Hotel ID"
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /hotels/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	current, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	hotelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "hotel not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), current.ID, hotelID); err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("hotel deleted", "hotel_id", hotelID, "user_id", current.ID)

	httputil.RespondJSON(w, map[string]string{"message": "Hotel deleted successfully."}, http.StatusOK)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var v validation.Errors
	switch {
	case errors.As(err, &v):
		logger.Warn("hotel request failed: validation error", "error", err.Error())
		httputil.RespondValidationErrors(w, v)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "hotel not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		logger.Warn("hotel request failed: ownership check")
		httputil.RespondErrorWithCode(w, "you do not have access to this hotel", httputil.CodeForbidden, http.StatusForbidden)
	default:
		logger.Error("hotel request failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// parseHotelRequest accepts either a JSON body or a multipart form with
// an optional photo part.
func parseHotelRequest(r *http.Request) (Input, *PhotoUpload, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return parseMultipartHotelRequest(r)
	}

	var req hotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, nil, err
	}

	return Input{
		Name:          req.Name,
		Email:         req.Email,
		PricePerNight: req.PricePerNight,
		Address:       req.Address,
		PhoneNumber:   req.PhoneNumber,
		Currency:      req.Currency,
		IsActive:      req.IsActive,
	}, nil, nil
}

func parseMultipartHotelRequest(r *http.Request) (Input, *PhotoUpload, error) {
	if err := r.ParseMultipartForm(maxPhotoSize + 1<<20); err != nil {
		return Input{}, nil, err
	}

	in := Input{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Address:     r.FormValue("address"),
		PhoneNumber: r.FormValue("phone_number"),
		Currency:    r.FormValue("currency"),
	}

	v := validation.Errors{}

	if raw := r.FormValue("price_per_night"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v.Add("price_per_night", "The price per night must be a number.")
		} else {
			in.PricePerNight = &price
		}
	}

	if raw := r.FormValue("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("is_active", "The is active field must be true or false.")
		} else {
			in.IsActive = &active
		}
	}

	var photo *PhotoUpload
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		if header.Size > maxPhotoSize {
			v.Add("photo", "The photo may not be greater than 2 MB.")
		}
		photoType := header.Header.Get("Content-Type")
		if !allowedPhotoTypes[photoType] {
			v.Add("photo", "The photo must be a jpeg, png, jpg or gif image.")
		}
		if len(v) == 0 {
			// Buffer the part so the file handle can be released here;
			// the size check above bounds the allocation.
			data, readErr := io.ReadAll(file)
			if readErr != nil {
				return Input{}, nil, readErr
			}
			photo = &PhotoUpload{Body: bytes.NewReader(data), ContentType: photoType}
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return Input{}, nil, err
	}

	if len(v) > 0 {
		return Input{}, nil, v
	}

	return in, photo, nil
}
