package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-places-api/internal/application/place"
	"github.com/go-places-api/internal/domain"
	"github.com/go-places-api/internal/pkg/validate"
	"github.com/go-places-api/internal/transport/http/middleware"
)

// PlaceHandler handles place browsing, admin CRUD, and rating endpoints.
type PlaceHandler struct {
	svc place.Service
}

func NewPlaceHandler(svc place.Service) *PlaceHandler { return &PlaceHandler{svc: svc} }

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parseLimitCursor(r)
	search := r.URL.Query().Get("search")
	minRating := queryFloat(r, "min_rating")
	places, next, err := h.svc.List(r.Context(), limit, cursor, search, minRating)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: places, NextCursor: next})
}

func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userLat := queryFloat(r, "user_lat")
	userLon := queryFloat(r, "user_lon")
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), userLat, userLon)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlaceHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()
	p, err := h.svc.UpdateImage(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Image redirects to a short-lived presigned URL for the place's image.
func (h *PlaceHandler) Image(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ImageURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "place deleted"})
}

func (h *PlaceHandler) Rate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rating, err := h.svc.Rate(r.Context(), caller.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

func (h *PlaceHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.svc.Ratings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: ratings})
}

// MyRatings lists every rating the authenticated user has left.
func (h *PlaceHandler) MyRatings(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ratings, err := h.svc.RatingsByUser(r.Context(), caller.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: ratings})
}
