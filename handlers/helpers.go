package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/arenagg/tournament-core/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

// errorBody — машиночитаемый конверт ошибки: kind для программной
// обработки, message для человека.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: в Decode передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, status int, kind, message string) {
	env := jsonResponse{"error": errorBody{Kind: kind, Message: message}}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, "internal",
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, "validation", err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusUnauthorized, "unauthorized", message)
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s URL parameter", param)
	}
	return id, nil
}

func parsePositiveInt(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.New("value must be a positive integer")
	}
	return n, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound):
		errorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		errorResponse(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrTournamentFormatRequired),
		errors.Is(err, services.ErrTournamentInvalidCapacity),
		errors.Is(err, services.ErrTournamentDatesRequired),
		errors.Is(err, services.ErrTournamentInvalidDeadline),
		errors.Is(err, services.ErrTournamentInvalidRankBounds),
		errors.Is(err, services.ErrInviteListEmpty),
		errors.Is(err, services.ErrViewerRequired):
		errorResponse(w, http.StatusUnprocessableEntity, "validation", err.Error())

	case errors.Is(err, services.ErrRegistrationNotOpen):
		errorResponse(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, services.ErrInvalidStatusTransition):
		errorResponse(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, services.ErrTournamentFull):
		errorResponse(w, http.StatusConflict, "full", err.Error())
	case errors.Is(err, services.ErrAlreadyRegistered):
		errorResponse(w, http.StatusConflict, "already_joined", err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		errorResponse(w, http.StatusConflict, "not_participant", err.Error())

	case errors.Is(err, services.ErrForbiddenOperation):
		errorResponse(w, http.StatusForbidden, "unauthorized", err.Error())

	case errors.Is(err, services.ErrBannerUploadsDisabled):
		errorResponse(w, http.StatusServiceUnavailable, "unavailable", err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
