package models

// PlatformStats — агрегированная статистика по турнирам платформы.
type PlatformStats struct {
	ActiveTournaments    int     `json:"active"`
	LiveTournaments      int     `json:"live"`
	CompletedTournaments int     `json:"completed"`
	TotalPrizePool       int64   `json:"total_prize_pool"`
	TotalParticipants    int     `json:"total_participants"`
	CompletionRate       float64 `json:"completion_rate"`
}
