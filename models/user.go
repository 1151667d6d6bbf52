package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RolePlayer    UserRole = "player"
)

type User struct {
	ID        int       `json:"id"`
	Nickname  string    `json:"nickname"`
	Role      UserRole  `json:"role"`
	Rank      *int      `json:"rank,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
