package handler

import (
	"context"
	"net/http"

	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/service"
)

// TeamHandler handles the caller's own team.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type teamRequest struct {
	PlayerIDs []string `json:"player_ids"`
}

type teamResponse struct {
	Team *domain.TeamView `json:"team"`
}

// Get handles GET /team. A user without a team gets a JSON null.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		RespondError(w, domain.ErrUnauthorized("not authenticated"))
		return
	}

	view, err := h.teams.GetTeam(r.Context(), id.ID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, view)
}

// Create handles POST /team. A missing or null player_ids creates an empty team.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, playerIDs, ok := h.decode(w, r, h.teams.CanCreate)
	if !ok {
		return
	}

	view, err := h.teams.CreateTeam(r.Context(), id.ID, playerIDs)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, teamResponse{Team: view})
}

// Update handles PUT /team. A missing or null player_ids empties the team.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, playerIDs, ok := h.decode(w, r, h.teams.CanUpdate)
	if !ok {
		return
	}

	view, err := h.teams.UpdateTeam(r.Context(), id.ID, playerIDs)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, teamResponse{Team: view})
}

// decode reads the player ids. When the body is malformed, precheck runs
// first so a missing or existing team is reported ahead of the bad body.
func (h *TeamHandler) decode(w http.ResponseWriter, r *http.Request, precheck func(ctx context.Context, userID string) error) (*domain.Identity, []string, bool) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		RespondError(w, domain.ErrUnauthorized("not authenticated"))
		return nil, nil, false
	}

	var req teamRequest
	if err := DecodeJSON(r, &req); err != nil {
		if err := precheck(r.Context(), id.ID); err != nil {
			RespondError(w, err)
			return nil, nil, false
		}
		respondInvalidBody(w)
		return nil, nil, false
	}
	return id, req.PlayerIDs, true
}
