package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arenagg/tournament-core/models"
	"github.com/arenagg/tournament-core/notify"
	"github.com/arenagg/tournament-core/repositories"
	"github.com/arenagg/tournament-core/storage"
	"golang.org/x/sync/errgroup"
)

// Directory — внешний справочник пользователей. Ядру от него нужна только роль.
type Directory interface {
	RoleOf(ctx context.Context, userID int) (models.UserRole, error)
}

type CreateTournamentInput struct {
	Name                 string    `json:"name"`
	Format               string    `json:"format"`
	GameMode             string    `json:"game_mode"`
	Region               string    `json:"region"`
	EntryFee             int       `json:"entry_fee"`
	PrizePool            int       `json:"prize_pool"`
	StartDate            time.Time `json:"start_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Rules                *string   `json:"rules"`
	AllowedMaps          []string  `json:"allowed_maps"`
	IsPrivate            bool      `json:"is_private"`
	RequireApproval      bool      `json:"require_approval"`
	AllowSpectators      bool      `json:"allow_spectators"`
	MinRank              *int      `json:"min_rank"`
	MaxRank              *int      `json:"max_rank"`
	MaxParticipants      int       `json:"max_participants"`
	InvitedUserIDs       []int     `json:"invited_user_ids"`
}

// ListQuery — словарь фильтрации/сортировки читающего пути.
// filter: all | open | live | upcoming | completed | mine
// sort:   newest | oldest | prize | participants | start_date
type ListQuery struct {
	Filter   string
	Sort     string
	Page     int
	PageSize int
	ViewerID *int
}

type InviteResult struct {
	UserID  int    `json:"user_id"`
	Invited bool   `json:"invited"`
	Error   string `json:"error,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, query ListQuery) ([]models.Tournament, int, error)
	ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error)
	ListUserInvitations(ctx context.Context, userID int) ([]models.Invitation, error)
	JoinTournament(ctx context.Context, tournamentID, userID int) error
	LeaveTournament(ctx context.Context, tournamentID, userID int) error
	ApproveTournament(ctx context.Context, tournamentID, adminID int, featured bool) (*models.Tournament, error)
	RejectTournament(ctx context.Context, tournamentID, adminID int, reason string) error
	ToggleFeatured(ctx context.Context, tournamentID int) (bool, error)
	SendInvites(ctx context.Context, tournamentID, inviterID int, userIDs []int) ([]InviteResult, error)
	GetPlatformStats(ctx context.Context) (models.PlatformStats, error)
	UploadBanner(ctx context.Context, tournamentID, userID int, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tx              repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	invitationRepo  repositories.InvitationRepository
	staffRepo       repositories.StaffRepository
	directory       Directory
	notifier        notify.Notifier
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	invitationRepo repositories.InvitationRepository,
	staffRepo repositories.StaffRepository,
	directory Directory,
	notifier notify.Notifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		invitationRepo:  invitationRepo,
		staffRepo:       staffRepo,
		directory:       directory,
		notifier:        notifier,
		uploader:        uploader,
		logger:          logger,
	}
}

// outbox копит уведомления, произведённые внутри транзакции.
// Рассылка происходит строго после коммита: для откатившейся транзакции
// уведомления не уходят никогда.
type outbox struct {
	events []notify.Notification
}

func (o *outbox) add(userID int, eventType, title, message string, metadata map[string]interface{}) {
	o.events = append(o.events, notify.Notification{
		UserID:   userID,
		Type:     eventType,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	})
}

func (s *tournamentService) dispatch(ctx context.Context, o *outbox) {
	for _, event := range o.events {
		s.notifier.Notify(ctx, event)
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:                 input.Name,
		Format:               input.Format,
		GameMode:             input.GameMode,
		Region:               input.Region,
		OrganizerID:          organizerID,
		EntryFee:             input.EntryFee,
		PrizePool:            input.PrizePool,
		StartDate:            input.StartDate,
		RegistrationDeadline: input.RegistrationDeadline,
		Rules:                input.Rules,
		AllowedMaps:          input.AllowedMaps,
		IsPrivate:            input.IsPrivate,
		RequireApproval:      input.RequireApproval,
		AllowSpectators:      input.AllowSpectators,
		MinRank:              input.MinRank,
		MaxRank:              input.MaxRank,
		MaxParticipants:      input.MaxParticipants,
		Status:               initialStatus(input.RequireApproval),
	}

	pending := &outbox{}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, t); err != nil {
			return err
		}

		// Турнир не существует без staff-записи организатора: обе строки
		// создаются в одной транзакции.
		staff := &models.StaffAssignment{
			TournamentID: t.ID,
			UserID:       organizerID,
			Role:         models.StaffOrganizer,
		}
		if err := s.staffRepo.Create(ctx, exec, staff); err != nil {
			return err
		}

		if t.IsPrivate {
			for _, userID := range input.InvitedUserIDs {
				inv := &models.Invitation{
					TournamentID: t.ID,
					UserID:       userID,
					InvitedBy:    organizerID,
				}
				if err := s.invitationRepo.Upsert(ctx, exec, inv); err != nil {
					return err
				}
				pending.add(userID, notify.TypeTournamentInvite,
					"Tournament invitation",
					fmt.Sprintf("You have been invited to %s", t.Name),
					map[string]interface{}{"tournament_id": t.ID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	s.dispatch(ctx, pending)
	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID),
		slog.Int("organizer_id", organizerID),
		slog.String("status", string(t.Status)))

	populateTournamentBannerURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load tournament participants",
			slog.Int("tournament_id", id), slog.Any("error", err))
	} else {
		t.Participants = participants
	}

	populateTournamentBannerURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, query ListQuery) ([]models.Tournament, int, error) {
	filter := repositories.ListTournamentsFilter{Sort: query.Sort}

	switch query.Filter {
	case "", "all":
	case "open":
		filter.Statuses = []models.TournamentStatus{models.StatusOpen}
	case "live":
		filter.Statuses = []models.TournamentStatus{models.StatusLive}
	case "completed":
		filter.Statuses = []models.TournamentStatus{models.StatusCompleted}
	case "upcoming":
		filter.Statuses = []models.TournamentStatus{models.StatusOpen}
		filter.UpcomingOnly = true
	case "mine":
		if query.ViewerID == nil {
			return nil, 0, ErrViewerRequired
		}
		filter.MemberUserID = query.ViewerID
	default:
		return nil, 0, fmt.Errorf("%w: unknown filter %q", ErrValidationFailed, query.Filter)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	tournaments, total, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range tournaments {
		populateTournamentBannerURL(&tournaments[i], s.uploader)
	}
	return tournaments, total, nil
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return s.participantRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) ListUserInvitations(ctx context.Context, userID int) ([]models.Invitation, error) {
	return s.invitationRepo.ListPendingByUser(ctx, userID)
}

// JoinTournament регистрирует пользователя в турнире. Все проверки и записи
// выполняются под блокировкой строки турнира: два одновременных join
// не могут оба пройти проверку вместимости и переполнить лимит.
func (s *tournamentService) JoinTournament(ctx context.Context, tournamentID, userID int) error {
	pending := &outbox{}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.StatusOpen {
			return ErrRegistrationNotOpen
		}
		if t.CurrentParticipantCount >= t.MaxParticipants {
			return ErrTournamentFull
		}

		exists, err := s.participantRepo.Exists(ctx, exec, tournamentID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRegistered
		}

		p := &models.Participant{
			TournamentID: tournamentID,
			UserID:       userID,
			Status:       models.ParticipantRegistered,
		}
		if err := s.participantRepo.Create(ctx, exec, p); err != nil {
			return err
		}
		if err := s.tournamentRepo.AdjustParticipantCount(ctx, exec, tournamentID, 1); err != nil {
			return err
		}

		pending.add(t.OrganizerID, notify.TypeParticipantJoined,
			"New participant",
			fmt.Sprintf("A player joined %s (%d/%d)", t.Name, t.CurrentParticipantCount+1, t.MaxParticipants),
			map[string]interface{}{"tournament_id": t.ID, "user_id": userID})
		return nil
	})
	if err != nil {
		return s.mapRepositoryError(err)
	}

	s.dispatch(ctx, pending)
	return nil
}

func (s *tournamentService) LeaveTournament(ctx context.Context, tournamentID, userID int) error {
	pending := &outbox{}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		if err := s.participantRepo.Delete(ctx, exec, tournamentID, userID); err != nil {
			return err
		}
		if err := s.tournamentRepo.AdjustParticipantCount(ctx, exec, tournamentID, -1); err != nil {
			return err
		}

		pending.add(t.OrganizerID, notify.TypeParticipantLeft,
			"Participant left",
			fmt.Sprintf("A player left %s", t.Name),
			map[string]interface{}{"tournament_id": t.ID, "user_id": userID})
		return nil
	})
	if err != nil {
		return s.mapRepositoryError(err)
	}

	s.dispatch(ctx, pending)
	return nil
}

func (s *tournamentService) requireAdmin(ctx context.Context, userID int) error {
	role, err := s.directory.RoleOf(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

// ApproveTournament переводит турнир из pending_approval в open.
// Из двух одновременных модераторов выигрывает ровно один: проигравший
// увидит уже изменённый статус под блокировкой строки и получит
// ErrInvalidStatusTransition.
func (s *tournamentService) ApproveTournament(ctx context.Context, tournamentID, adminID int, featured bool) (*models.Tournament, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var approved *models.Tournament
	pending := &outbox{}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := validateTransition(t.Status, models.StatusOpen); err != nil {
			return err
		}

		now := time.Now()
		if err := s.tournamentRepo.Approve(ctx, exec, tournamentID, adminID, featured, now); err != nil {
			return err
		}

		t.Status = models.StatusOpen
		t.ApprovedBy = &adminID
		t.ApprovedAt = &now
		t.IsFeatured = featured
		approved = t

		pending.add(t.OrganizerID, notify.TypeTournamentApproved,
			"Tournament approved",
			fmt.Sprintf("%s is now open for registration", t.Name),
			map[string]interface{}{"tournament_id": t.ID})
		return nil
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	s.dispatch(ctx, pending)
	s.logger.InfoContext(ctx, "tournament approved",
		slog.Int("tournament_id", tournamentID), slog.Int("admin_id", adminID))

	populateTournamentBannerURL(approved, s.uploader)
	return approved, nil
}

func (s *tournamentService) RejectTournament(ctx context.Context, tournamentID, adminID int, reason string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	pending := &outbox{}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := validateTransition(t.Status, models.StatusRejected); err != nil {
			return err
		}

		if err := s.tournamentRepo.Reject(ctx, exec, tournamentID, adminID, reason, time.Now()); err != nil {
			return err
		}

		pending.add(t.OrganizerID, notify.TypeTournamentRejected,
			"Tournament rejected",
			fmt.Sprintf("%s was rejected: %s", t.Name, reason),
			map[string]interface{}{"tournament_id": t.ID, "reason": reason})
		return nil
	})
	if err != nil {
		return s.mapRepositoryError(err)
	}

	s.dispatch(ctx, pending)
	s.logger.InfoContext(ctx, "tournament rejected",
		slog.Int("tournament_id", tournamentID), slog.Int("admin_id", adminID))
	return nil
}

// ToggleFeatured переключает флаг is_featured; допустимо только для открытых турниров.
func (s *tournamentService) ToggleFeatured(ctx context.Context, tournamentID int) (bool, error) {
	var featured bool
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.StatusOpen {
			return ErrInvalidStatusTransition
		}
		featured = !t.IsFeatured
		return s.tournamentRepo.SetFeatured(ctx, exec, tournamentID, featured)
	})
	if err != nil {
		return false, s.mapRepositoryError(err)
	}
	return featured, nil
}

// SendInvites создаёт приглашения в приватный турнир. Каждое приглашение —
// независимая единица: сбой одного не откатывает остальные, а повторная
// отправка безопасна благодаря upsert'у.
func (s *tournamentService) SendInvites(ctx context.Context, tournamentID, inviterID int, userIDs []int) ([]InviteResult, error) {
	if len(userIDs) == 0 {
		return nil, ErrInviteListEmpty
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if !t.IsPrivate {
		return nil, ErrForbiddenOperation
	}

	role, err := s.staffRepo.GetRole(ctx, nil, tournamentID, inviterID)
	if err != nil {
		if errors.Is(err, repositories.ErrStaffNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, err
	}
	if role != models.StaffOrganizer {
		return nil, ErrForbiddenOperation
	}

	results := make([]InviteResult, 0, len(userIDs))
	for _, userID := range userIDs {
		inv := &models.Invitation{
			TournamentID: tournamentID,
			UserID:       userID,
			InvitedBy:    inviterID,
		}
		if err := s.invitationRepo.Upsert(ctx, nil, inv); err != nil {
			s.logger.WarnContext(ctx, "failed to invite user",
				slog.Int("tournament_id", tournamentID),
				slog.Int("user_id", userID),
				slog.Any("error", err))
			results = append(results, InviteResult{UserID: userID, Error: inviteErrorMessage(err)})
			continue
		}

		results = append(results, InviteResult{UserID: userID, Invited: true})
		s.notifier.Notify(ctx, notify.Notification{
			UserID:  userID,
			Type:    notify.TypeTournamentInvite,
			Title:   "Tournament invitation",
			Message: fmt.Sprintf("You have been invited to %s", t.Name),
			Metadata: map[string]interface{}{
				"tournament_id": t.ID,
				"invited_by":    inviterID,
			},
		})
	}
	return results, nil
}

func inviteErrorMessage(err error) string {
	if errors.Is(err, repositories.ErrInvitationUserInvalid) {
		return "user not found"
	}
	return "invitation failed"
}

// GetPlatformStats собирает агрегаты параллельно; читающий путь
// не использует транзакций и терпим к гонкам с текущими записями.
func (s *tournamentService) GetPlatformStats(ctx context.Context) (models.PlatformStats, error) {
	var stats models.PlatformStats
	var totalFinishedOrRunning int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ActiveTournaments, err = s.tournamentRepo.CountByStatus(gCtx, models.StatusOpen)
		return err
	})
	g.Go(func() error {
		var err error
		stats.LiveTournaments, err = s.tournamentRepo.CountByStatus(gCtx, models.StatusLive)
		return err
	})
	g.Go(func() error {
		var err error
		stats.CompletedTournaments, err = s.tournamentRepo.CountByStatus(gCtx, models.StatusCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		totalFinishedOrRunning, err = s.tournamentRepo.CountByStatus(gCtx,
			models.StatusOpen, models.StatusLive, models.StatusCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalPrizePool, err = s.tournamentRepo.SumPrizePool(gCtx,
			models.StatusOpen, models.StatusLive, models.StatusCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalParticipants, err = s.participantRepo.CountAll(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PlatformStats{}, fmt.Errorf("failed to collect platform stats: %w", err)
	}

	if totalFinishedOrRunning > 0 {
		stats.CompletionRate = float64(stats.CompletedTournaments) / float64(totalFinishedOrRunning)
	}
	return stats, nil
}

// UploadBanner загружает баннер турнира в объектное хранилище.
// Доступно организатору и ко-организаторам турнира.
func (s *tournamentService) UploadBanner(ctx context.Context, tournamentID, userID int, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrBannerUploadsDisabled
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	if _, err := s.staffRepo.GetRole(ctx, nil, tournamentID, userID); err != nil {
		if errors.Is(err, repositories.ErrStaffNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%d/banner%s", tournamentID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload tournament banner: %w", err)
	}
	if err := s.tournamentRepo.UpdateBannerKey(ctx, tournamentID, &key); err != nil {
		return nil, s.mapRepositoryError(err)
	}

	t.BannerKey = &key
	populateTournamentBannerURL(t, s.uploader)
	return t, nil
}

// mapRepositoryError переводит ошибки хранилища в ошибки сервисного слоя.
func (s *tournamentService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrNotParticipant
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrTournamentCapacityExceeded):
		return ErrTournamentFull
	case errors.Is(err, repositories.ErrTournamentStatusConflict):
		return ErrInvalidStatusTransition
	case errors.Is(err, repositories.ErrParticipantUserInvalid),
		errors.Is(err, repositories.ErrInvitationUserInvalid),
		errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
