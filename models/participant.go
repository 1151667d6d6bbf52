package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantCheckedIn  ParticipantStatus = "checked_in"
	ParticipantEliminated ParticipantStatus = "eliminated"
)

// Participant — запись об участии пользователя в турнире.
// Уникальность пары (tournament_id, user_id) обеспечивается constraint'ом в БД.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	UserID       int               `json:"user_id" db:"user_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	RegisteredAt time.Time         `json:"registered_at" db:"registered_at"`

	User *User `json:"user,omitempty" db:"-"`
}
