package handlers

import (
	"errors"
	"net/http"

	"github.com/arenagg/tournament-core/middleware"
	"github.com/arenagg/tournament-core/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	listQuery := services.ListQuery{
		Filter: query.Get("filter"),
		Sort:   query.Get("sort"),
	}
	var err error
	if listQuery.Page, err = parsePositiveInt(query.Get("page"), 1); err != nil {
		badRequestResponse(w, errors.New("invalid page query parameter"))
		return
	}
	if listQuery.PageSize, err = parsePositiveInt(query.Get("page_size"), 20); err != nil {
		badRequestResponse(w, errors.New("invalid page_size query parameter"))
		return
	}

	// viewer опционален: список доступен и без аутентификации,
	// но фильтр mine требует личность.
	if viewerID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		listQuery.ViewerID = &viewerID
	}

	tournaments, total, err := h.tournamentService.ListTournaments(r.Context(), listQuery)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	payload := jsonResponse{
		"tournaments": tournaments,
		"total":       total,
		"page":        listQuery.Page,
		"page_size":   listQuery.PageSize,
	}
	if err := writeJSON(w, http.StatusOK, payload, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler обрабатывает POST /tournaments/{tournamentID}/join
func (h *TournamentHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required to join tournament")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.JoinTournament(r.Context(), id, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"joined": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler обрабатывает POST /tournaments/{tournamentID}/leave
func (h *TournamentHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required to leave tournament")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.LeaveTournament(r.Context(), id, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"left": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApproveHandler обрабатывает POST /tournaments/{tournamentID}/approve
func (h *TournamentHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Featured bool `json:"featured"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.ApproveTournament(r.Context(), id, currentUserID, input.Featured)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RejectHandler обрабатывает POST /tournaments/{tournamentID}/reject
func (h *TournamentHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.RejectTournament(r.Context(), id, currentUserID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rejected": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ToggleFeaturedHandler обрабатывает POST /tournaments/{tournamentID}/featured
func (h *TournamentHandler) ToggleFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	featured, err := h.tournamentService.ToggleFeatured(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"featured": featured}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendInvitesHandler обрабатывает POST /tournaments/{tournamentID}/invites
func (h *TournamentHandler) SendInvitesHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required to send invites")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		UserIDs []int `json:"user_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	results, err := h.tournamentService.SendInvites(r.Context(), id, currentUserID, input.UserIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"invites": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListParticipantsHandler обрабатывает GET /tournaments/{tournamentID}/participants
func (h *TournamentHandler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	participants, err := h.tournamentService.ListParticipants(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadBannerHandler обрабатывает POST /tournaments/{tournamentID}/banner
func (h *TournamentHandler) UploadBannerHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required to upload banner")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	file, header, err := r.FormFile("banner")
	if err != nil {
		badRequestResponse(w, errors.New("banner file is required"))
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadBanner(r.Context(), id, currentUserID,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
