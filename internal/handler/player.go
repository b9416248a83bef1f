package handler

import (
	"net/http"

	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/service"
)

// PlayerHandler handles the player catalog endpoints.
type PlayerHandler struct {
	catalog *service.CatalogService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(catalog *service.CatalogService) *PlayerHandler {
	return &PlayerHandler{catalog: catalog}
}

// List handles GET /players.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.catalog.ListPlayers(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, players)
}

// Add handles POST /players (admin only).
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var input domain.Player
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	player, err := h.catalog.AddPlayer(r.Context(), auth.IdentityFromContext(r.Context()), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, player)
}
