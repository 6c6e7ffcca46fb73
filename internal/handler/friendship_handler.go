package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/service"
)

// =============================================================================
// Friendship Handler
// =============================================================================

// FriendshipHandler serves the friendship request endpoints.
type FriendshipHandler struct {
	friendships *service.FriendshipService
	logger      zerolog.Logger
}

// NewFriendshipHandler creates a friendship handler.
func NewFriendshipHandler(friendships *service.FriendshipService, logger zerolog.Logger) *FriendshipHandler {
	return &FriendshipHandler{
		friendships: friendships,
		logger:      logger.With().Str("component", "friendship_handler").Logger(),
	}
}

// Send handles POST /friendship/send.
// The target is addressed by username.
func (h *FriendshipHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := decodeBody(r, &input); err != nil || input.Username == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	friendship, err := h.friendships.SendRequest(r.Context(), user.ID, input.Username)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, friendship)
}

// Respond handles POST /friendship/{id}/respond.
// Only the requestee of a pending request may accept or reject it.
func (h *FriendshipHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	friendshipID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid friendship id")
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	friendship, err := h.friendships.Respond(
		r.Context(), user.ID, friendshipID, domain.FriendshipStatus(input.Status))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, friendship)
}

// List handles GET /friendship/list.
func (h *FriendshipHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	friends, err := h.friendships.Friends(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

// Pending handles GET /friendship/pending.
// Lists requests awaiting the caller's response.
func (h *FriendshipHandler) Pending(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	requests, err := h.friendships.PendingRequests(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}
