package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation — приглашение пользователя в приватный турнир.
// Приглашение не означает членство: пользователь всё равно должен присоединиться сам.
type Invitation struct {
	ID           int              `json:"id" db:"id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	UserID       int              `json:"user_id" db:"user_id"`
	InvitedBy    int              `json:"invited_by" db:"invited_by"`
	Status       InvitationStatus `json:"status" db:"status"`
	InvitedAt    time.Time        `json:"invited_at" db:"invited_at"`
}
