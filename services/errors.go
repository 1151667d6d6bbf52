package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")

	// Ошибки валидации
	ErrValidationFailed             = errors.New("validation failed")
	ErrTournamentNameRequired       = errors.New("tournament name is required")
	ErrTournamentFormatRequired     = errors.New("tournament format is required")
	ErrTournamentInvalidCapacity    = errors.New("tournament max participants must be positive")
	ErrTournamentDatesRequired      = errors.New("tournament start date and registration deadline are required")
	ErrTournamentInvalidDeadline    = errors.New("registration deadline must not be after the start date")
	ErrTournamentInvalidRankBounds  = errors.New("min rank must not exceed max rank")
	ErrInviteListEmpty              = errors.New("invite list must not be empty")
	ErrViewerRequired               = errors.New("viewer identity is required for this filter")

	// Бизнес-правила жизненного цикла и участия
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrTournamentFull          = errors.New("tournament registration is full")
	ErrAlreadyRegistered       = errors.New("user is already registered for this tournament")
	ErrNotParticipant          = errors.New("user is not a participant of this tournament")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Авторизация
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Инфраструктура
	ErrBannerUploadsDisabled = errors.New("banner uploads are not configured")
)
