package services

import "github.com/arenagg/tournament-core/models"

// allowedTransitions — закрытая таблица переходов жизненного цикла турнира.
// pending_approval -> open | rejected
// open             -> live | cancelled
// live             -> completed | cancelled
// Терминальные статусы переходов не имеют.
var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusPendingApproval: {models.StatusOpen, models.StatusRejected},
	models.StatusOpen:            {models.StatusLive, models.StatusCancelled},
	models.StatusLive:            {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:       {},
	models.StatusRejected:        {},
	models.StatusCancelled:       {},
}

func CanTransition(current, next models.TournamentStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func validateTransition(current, next models.TournamentStatus) error {
	if !CanTransition(current, next) {
		return ErrInvalidStatusTransition
	}
	return nil
}

// initialStatus — статус нового турнира: на модерацию либо сразу открыт.
func initialStatus(requireApproval bool) models.TournamentStatus {
	if requireApproval {
		return models.StatusPendingApproval
	}
	return models.StatusOpen
}
