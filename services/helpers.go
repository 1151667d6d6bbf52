package services

import (
	"fmt"
	"strings"

	"github.com/arenagg/tournament-core/models"
	"github.com/arenagg/tournament-core/storage"
)

func validateCreateInput(input CreateTournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrTournamentNameRequired
	}
	if strings.TrimSpace(input.Format) == "" {
		return ErrTournamentFormatRequired
	}
	if input.MaxParticipants <= 0 {
		return ErrTournamentInvalidCapacity
	}
	if input.StartDate.IsZero() || input.RegistrationDeadline.IsZero() {
		return ErrTournamentDatesRequired
	}
	if input.RegistrationDeadline.After(input.StartDate) {
		return fmt.Errorf("%w: deadline %s, start %s", ErrTournamentInvalidDeadline,
			input.RegistrationDeadline.Format("2006-01-02"), input.StartDate.Format("2006-01-02"))
	}
	if input.MinRank != nil && input.MaxRank != nil && *input.MinRank > *input.MaxRank {
		return ErrTournamentInvalidRankBounds
	}
	return nil
}

func populateTournamentBannerURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil && t.BannerKey != nil && *t.BannerKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*t.BannerKey)
		if url != "" {
			t.BannerURL = &url
		}
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported banner content type: %q", contentType)
	}
}
