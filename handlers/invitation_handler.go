package handlers

import (
	"net/http"

	"github.com/arenagg/tournament-core/middleware"
	"github.com/arenagg/tournament-core/models"
	"github.com/arenagg/tournament-core/services"
)

type InvitationHandler struct {
	tournamentService services.TournamentService
}

func NewInvitationHandler(ts services.TournamentService) *InvitationHandler {
	return &InvitationHandler{tournamentService: ts}
}

// ListUserInvitationsHandler обрабатывает GET /users/{userID}/invitations.
// Свои приглашения видит сам пользователь; админ видит любые.
func (h *InvitationHandler) ListUserInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if userID != currentUserID {
		role, roleErr := middleware.GetUserRoleFromContext(r.Context())
		if roleErr != nil || role != models.RoleAdmin {
			errorResponse(w, http.StatusForbidden, "unauthorized", "cannot view another user's invitations")
			return
		}
	}

	invitations, err := h.tournamentService.ListUserInvitations(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitations": invitations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
