package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arenagg/tournament-core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"tournament not found", services.ErrTournamentNotFound, http.StatusNotFound, "not_found"},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{"validation", services.ErrTournamentNameRequired, http.StatusUnprocessableEntity, "validation"},
		{"wrapped validation", errors.Join(errors.New("ctx"), services.ErrValidationFailed), http.StatusUnprocessableEntity, "validation"},
		{"registration closed", services.ErrRegistrationNotOpen, http.StatusConflict, "invalid_state"},
		{"bad transition", services.ErrInvalidStatusTransition, http.StatusConflict, "invalid_transition"},
		{"full", services.ErrTournamentFull, http.StatusConflict, "full"},
		{"already joined", services.ErrAlreadyRegistered, http.StatusConflict, "already_joined"},
		{"not participant", services.ErrNotParticipant, http.StatusConflict, "not_participant"},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden, "unauthorized"},
		{"uploads disabled", services.ErrBannerUploadsDisabled, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tournaments/1/join", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body struct {
				Error errorBody `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantKind, body.Error.Kind)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	newRequest := func(body string) (*httptest.ResponseRecorder, *http.Request) {
		return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	t.Run("valid body", func(t *testing.T) {
		w, r := newRequest(`{"name": "Summer Clash"}`)
		var dst payload
		require.NoError(t, readJSON(w, r, &dst))
		assert.Equal(t, "Summer Clash", dst.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		w, r := newRequest("")
		var dst payload
		require.EqualError(t, readJSON(w, r, &dst), "body must not be empty")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w, r := newRequest(`{"name": `)
		var dst payload
		require.Error(t, readJSON(w, r, &dst))
	})

	t.Run("unknown field", func(t *testing.T) {
		w, r := newRequest(`{"name": "x", "bogus": 1}`)
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("multiple JSON values", func(t *testing.T) {
		w, r := newRequest(`{"name": "x"}{"name": "y"}`)
		var dst payload
		require.EqualError(t, readJSON(w, r, &dst), "body must only contain a single JSON value")
	})

	t.Run("wrong field type", func(t *testing.T) {
		w, r := newRequest(`{"name": 42}`)
		var dst payload
		err := readJSON(w, r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `incorrect JSON type for field "name"`)
	})
}

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt("", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = parsePositiveInt("5", 20)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = parsePositiveInt("0", 20)
	require.Error(t, err)

	_, err = parsePositiveInt("abc", 20)
	require.Error(t, err)
}
