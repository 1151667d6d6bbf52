package services

import (
	"testing"

	"github.com/arenagg/tournament-core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    models.TournamentStatus
		to      models.TournamentStatus
		allowed bool
	}{
		{"pending to open", models.StatusPendingApproval, models.StatusOpen, true},
		{"pending to rejected", models.StatusPendingApproval, models.StatusRejected, true},
		{"pending to live", models.StatusPendingApproval, models.StatusLive, false},
		{"pending to completed", models.StatusPendingApproval, models.StatusCompleted, false},
		{"open to live", models.StatusOpen, models.StatusLive, true},
		{"open to cancelled", models.StatusOpen, models.StatusCancelled, true},
		{"open to rejected", models.StatusOpen, models.StatusRejected, false},
		{"open to completed", models.StatusOpen, models.StatusCompleted, false},
		{"live to completed", models.StatusLive, models.StatusCompleted, true},
		{"live to cancelled", models.StatusLive, models.StatusCancelled, true},
		{"live to open", models.StatusLive, models.StatusOpen, false},
		{"completed is terminal", models.StatusCompleted, models.StatusOpen, false},
		{"rejected is terminal", models.StatusRejected, models.StatusOpen, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusLive, false},
		{"unknown status has no transitions", models.TournamentStatus("draft"), models.StatusOpen, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	require.NoError(t, validateTransition(models.StatusPendingApproval, models.StatusOpen))
	require.ErrorIs(t, validateTransition(models.StatusOpen, models.StatusOpen), ErrInvalidStatusTransition)
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.StatusPendingApproval, initialStatus(true))
	assert.Equal(t, models.StatusOpen, initialStatus(false))
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range []models.TournamentStatus{models.StatusCompleted, models.StatusRejected, models.StatusCancelled} {
		assert.True(t, status.IsTerminal(), string(status))
		assert.Empty(t, allowedTransitions[status])
	}
	for _, status := range []models.TournamentStatus{models.StatusPendingApproval, models.StatusOpen, models.StatusLive} {
		assert.False(t, status.IsTerminal(), string(status))
	}
}
