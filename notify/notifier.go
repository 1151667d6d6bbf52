package notify

import (
	"context"
	"log/slog"
	"time"
)

// Notification — событие для конкретного пользователя.
type Notification struct {
	UserID   int                    `json:"user_id"`
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	SentAt   time.Time              `json:"sent_at"`
}

// Типы событий, которые отправляет ядро турниров.
const (
	TypeTournamentInvite   = "tournament_invite"
	TypeTournamentApproved = "tournament_approved"
	TypeTournamentRejected = "tournament_rejected"
	TypeParticipantJoined  = "participant_joined"
	TypeParticipantLeft    = "participant_left"
)

// Notifier доставляет уведомления fire-and-forget: ошибки доставки
// логируются и никогда не влияют на исход вызвавшей операции.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier — запасная реализация: просто пишет событие в лог.
// Используется, когда WebSocket-хаб не поднят (тесты, воркеры).
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event Notification) {
	n.logger.InfoContext(ctx, "notification",
		slog.Int("user_id", event.UserID),
		slog.String("type", event.Type),
		slog.String("title", event.Title),
	)
}
