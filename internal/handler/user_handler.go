package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/service"
	"github.com/connectify/user-api/internal/validate"
)

// =============================================================================
// User Handler
// =============================================================================

// UserHandler serves the authenticated profile endpoints. The auth
// middleware has already resolved the bearer token to a user before any of
// these run.
type UserHandler struct {
	users       *service.UserService
	accounts    *service.AccountService
	maxBodySize int64
	logger      zerolog.Logger
}

// NewUserHandler creates a user handler. maxBodySize bounds avatar uploads.
func NewUserHandler(
	users *service.UserService,
	accounts *service.AccountService,
	maxBodySize int64,
	logger zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		users:       users,
		accounts:    accounts,
		maxBodySize: maxBodySize,
		logger:      logger.With().Str("component", "user_handler").Logger(),
	}
}

// Profile handles GET /user/my-profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	output, err := h.users.Profile(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    output.User.Public(),
		"friends": output.Friends,
	})
}

// UpdateProfile handles PATCH /user/my-profile/update.
// Only the fields present in the body are changed.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	var input validate.UpdateProfileInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Public())
}

// UploadAvatar handles POST /user/my-profile/avatar.
// Expects a multipart form with the image under the "avatar" field.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing avatar file")
		return
	}
	defer file.Close()

	url, err := h.accounts.UploadAvatar(
		r.Context(), user.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// RemoveAvatar handles DELETE /user/my-profile/avatar.
func (h *UserHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	if err := h.accounts.RemoveAvatar(r.Context(), user.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
