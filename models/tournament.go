package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusPendingApproval TournamentStatus = "pending_approval"
	StatusOpen            TournamentStatus = "open"
	StatusLive            TournamentStatus = "live"
	StatusCompleted       TournamentStatus = "completed"
	StatusRejected        TournamentStatus = "rejected"
	StatusCancelled       TournamentStatus = "cancelled"
)

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusOpen, StatusLive, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным (из него нет переходов).
func (s TournamentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID                      int              `json:"id" db:"id"`
	Name                    string           `json:"name" db:"name"`
	Format                  string           `json:"format" db:"format"`
	GameMode                string           `json:"game_mode" db:"game_mode"`
	Region                  string           `json:"region" db:"region"`
	OrganizerID             int              `json:"organizer_id" db:"organizer_id"`
	EntryFee                int              `json:"entry_fee" db:"entry_fee"`
	PrizePool               int              `json:"prize_pool" db:"prize_pool"`
	StartDate               time.Time        `json:"start_date" db:"start_date"`
	RegistrationDeadline    time.Time        `json:"registration_deadline" db:"registration_deadline"`
	Rules                   *string          `json:"rules,omitempty" db:"rules"`
	AllowedMaps             []string         `json:"allowed_maps" db:"allowed_maps"`
	IsPrivate               bool             `json:"is_private" db:"is_private"`
	RequireApproval         bool             `json:"require_approval" db:"require_approval"`
	AllowSpectators         bool             `json:"allow_spectators" db:"allow_spectators"`
	MinRank                 *int             `json:"min_rank,omitempty" db:"min_rank"`
	MaxRank                 *int             `json:"max_rank,omitempty" db:"max_rank"`
	MaxParticipants         int              `json:"max_participants" db:"max_participants"`
	CurrentParticipantCount int              `json:"current_participant_count" db:"current_participant_count"`
	Status                  TournamentStatus `json:"status" db:"status"`
	IsFeatured              bool             `json:"is_featured" db:"is_featured"`
	ApprovedBy              *int             `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt              *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	RejectedBy              *int             `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectedAt              *time.Time       `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason         *string          `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt               time.Time        `json:"created_at" db:"created_at"`
	BannerKey               *string          `json:"-" db:"banner_key"`
	BannerURL               *string          `json:"banner_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer    *User         `json:"organizer,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
