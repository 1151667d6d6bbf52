package models

import "time"

type StaffRole string

const (
	StaffOrganizer   StaffRole = "organizer"
	StaffCoOrganizer StaffRole = "co_organizer"
)

// StaffAssignment — роль пользователя в управлении конкретным турниром.
// Создатель турнира автоматически получает роль organizer.
type StaffAssignment struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Role         StaffRole `json:"role" db:"role"`
	AssignedAt   time.Time `json:"assigned_at" db:"assigned_at"`
}
