package repositories

import (
	"testing"

	"github.com/arenagg/tournament-core/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildListWhere(t *testing.T) {
	t.Run("empty filter", func(t *testing.T) {
		where, args := buildListWhere(ListTournamentsFilter{})
		assert.Equal(t, " WHERE 1=1", where)
		assert.Empty(t, args)
	})

	t.Run("statuses", func(t *testing.T) {
		where, args := buildListWhere(ListTournamentsFilter{
			Statuses: []models.TournamentStatus{models.StatusOpen, models.StatusLive},
		})
		assert.Contains(t, where, "status = ANY($1)")
		assert.Len(t, args, 1)
	})

	t.Run("upcoming only", func(t *testing.T) {
		where, args := buildListWhere(ListTournamentsFilter{UpcomingOnly: true})
		assert.Contains(t, where, "start_date > $1")
		assert.Len(t, args, 1)
	})

	t.Run("member filter numbers placeholders after statuses", func(t *testing.T) {
		userID := 7
		where, args := buildListWhere(ListTournamentsFilter{
			Statuses:     []models.TournamentStatus{models.StatusOpen},
			MemberUserID: &userID,
		})
		assert.Contains(t, where, "status = ANY($1)")
		assert.Contains(t, where, "organizer_id = $2")
		assert.Contains(t, where, "p.user_id = $2")
		assert.Len(t, args, 2)
		assert.Equal(t, userID, args[1])
	})
}

func TestListOrderBy(t *testing.T) {
	cases := map[string]string{
		"newest":       " ORDER BY created_at DESC",
		"oldest":       " ORDER BY created_at ASC",
		"prize":        " ORDER BY prize_pool DESC, created_at DESC",
		"participants": " ORDER BY current_participant_count DESC, created_at DESC",
		"start_date":   " ORDER BY start_date ASC, created_at DESC",
		"":             " ORDER BY created_at DESC",
		"; DROP TABLE": " ORDER BY created_at DESC",
	}
	for sort, expected := range cases {
		assert.Equal(t, expected, listOrderBy(sort), "sort=%q", sort)
	}
}
