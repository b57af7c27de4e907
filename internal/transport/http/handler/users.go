package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-places-api/internal/application/user"
	"github.com/go-places-api/internal/domain"
	"github.com/go-places-api/internal/pkg/validate"
	"github.com/go-places-api/internal/transport/http/middleware"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// Authorizer decides whether a caller may change their own admin flag.
type Authorizer interface {
	Authorized(u *domain.User, suppliedSecret string) bool
}

// UserHandler handles user profile, admin, and saved-places endpoints.
type UserHandler struct {
	svc   user.Service
	authz Authorizer
}

func NewUserHandler(svc user.Service, authz Authorizer) *UserHandler {
	return &UserHandler{svc: svc, authz: authz}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parseLimitCursor(r)
	users, next, err := h.svc.List(r.Context(), limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: users, NextCursor: next})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, caller)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	allowAdminChange := h.authz.Authorized(caller, r.URL.Query().Get("secret_key"))
	u, err := h.svc.UpdateProfile(r.Context(), caller.UserID, req, allowAdminChange)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateMyPhoto(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()
	u, err := h.svc.UpdatePhoto(r.Context(), caller.UserID, header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// MyPhoto redirects to a short-lived presigned URL for the caller's photo.
func (h *UserHandler) MyPhoto(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	url, err := h.svc.PhotoURL(r.Context(), caller.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

func (h *UserHandler) SavePlace(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.SavePlace(r.Context(), caller.UserID, chi.URLParam(r, "placeID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "place saved"})
}

func (h *UserHandler) UnsavePlace(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.UnsavePlace(r.Context(), caller.UserID, chi.URLParam(r, "placeID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "place removed from saved list"})
}

func (h *UserHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	places, err := h.svc.ListSaved(r.Context(), caller.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: places})
}
