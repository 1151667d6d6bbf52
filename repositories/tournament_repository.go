package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arenagg/tournament-core/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentNameConflict     = errors.New("tournament name conflict for this organizer")
	ErrTournamentInvalidOrg       = errors.New("invalid organizer reference")
	ErrTournamentStatusConflict   = errors.New("tournament status did not match expected value")
	ErrTournamentCapacityExceeded = errors.New("tournament participant count exceeds capacity")
)

// ListTournamentsFilter — уже разобранный фильтр списка.
// Разбор пользовательского словаря (all/open/live/upcoming/completed/mine)
// выполняет сервисный слой.
type ListTournamentsFilter struct {
	Statuses     []models.TournamentStatus
	UpcomingOnly bool
	MemberUserID *int // турниры, где пользователь организатор или участник
	Sort         string
	Limit        int
	Offset       int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate читает строку турнира под блокировкой SELECT ... FOR UPDATE.
	// Конкурирующие join/leave/approve сериализуются на этой блокировке.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, int, error)
	Approve(ctx context.Context, exec SQLExecutor, id, adminID int, featured bool, at time.Time) error
	Reject(ctx context.Context, exec SQLExecutor, id, adminID int, reason string, at time.Time) error
	SetFeatured(ctx context.Context, exec SQLExecutor, id int, featured bool) error
	AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id, delta int) error
	UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error
	CountByStatus(ctx context.Context, statuses ...models.TournamentStatus) (int, error)
	SumPrizePool(ctx context.Context, statuses ...models.TournamentStatus) (int64, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, format, game_mode, region, organizer_id,
	entry_fee, prize_pool, start_date, registration_deadline, rules, allowed_maps,
	is_private, require_approval, allow_spectators, min_rank, max_rank,
	max_participants, current_participant_count, status, is_featured,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	created_at, banner_key`

func scanTournament(row interface{ Scan(dest ...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Format, &t.GameMode, &t.Region, &t.OrganizerID,
		&t.EntryFee, &t.PrizePool, &t.StartDate, &t.RegistrationDeadline, &t.Rules, pq.Array(&t.AllowedMaps),
		&t.IsPrivate, &t.RequireApproval, &t.AllowSpectators, &t.MinRank, &t.MaxRank,
		&t.MaxParticipants, &t.CurrentParticipantCount, &t.Status, &t.IsFeatured,
		&t.ApprovedBy, &t.ApprovedAt, &t.RejectedBy, &t.RejectedAt, &t.RejectionReason,
		&t.CreatedAt, &t.BannerKey,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			name, format, game_mode, region, organizer_id,
			entry_fee, prize_pool, start_date, registration_deadline, rules, allowed_maps,
			is_private, require_approval, allow_spectators, min_rank, max_rank,
			max_participants, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, current_participant_count, is_featured, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Format, t.GameMode, t.Region, t.OrganizerID,
		t.EntryFee, t.PrizePool, t.StartDate, t.RegistrationDeadline, t.Rules, pq.Array(t.AllowedMaps),
		t.IsPrivate, t.RequireApproval, t.AllowSpectators, t.MinRank, t.MaxRank,
		t.MaxParticipants, t.Status,
	).Scan(&t.ID, &t.CurrentParticipantCount, &t.IsFeatured, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) getByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, exec, id, false)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, exec, id, true)
}

// buildListWhere собирает WHERE-часть запроса списка и её аргументы.
func buildListWhere(filter ListTournamentsFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	if len(filter.Statuses) > 0 {
		where += fmt.Sprintf(" AND status = ANY($%d)", argID)
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		argID++
	}
	if filter.UpcomingOnly {
		where += fmt.Sprintf(" AND start_date > $%d", argID)
		args = append(args, time.Now())
		argID++
	}
	if filter.MemberUserID != nil {
		where += fmt.Sprintf(
			" AND (organizer_id = $%d OR EXISTS (SELECT 1 FROM participants p WHERE p.tournament_id = tournaments.id AND p.user_id = $%d))",
			argID, argID)
		args = append(args, *filter.MemberUserID)
		argID++
	}
	return where, args
}

// listOrderBy переводит сортировочный словарь в ORDER BY.
// Неизвестные значения падают в newest, чтобы сортировка никогда
// не собиралась из пользовательского ввода напрямую.
func listOrderBy(sort string) string {
	switch sort {
	case "oldest":
		return " ORDER BY created_at ASC"
	case "prize":
		return " ORDER BY prize_pool DESC, created_at DESC"
	case "participants":
		return " ORDER BY current_participant_count DESC, created_at DESC"
	case "start_date":
		return " ORDER BY start_date ASC, created_at DESC"
	default: // newest
		return " ORDER BY created_at DESC"
	}
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, int, error) {
	executor := r.getExecutor(nil)
	where, args := buildListWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM tournaments` + where
	if err := executor.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tournaments: %w", err)
	}

	query := `SELECT` + tournamentColumns + ` FROM tournaments` + where + listOrderBy(filter.Sort)
	argID := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return tournaments, total, nil
}

// Approve переводит турнир pending_approval -> open. Условие по текущему статусу
// в WHERE гарантирует, что из двух конкурирующих модераторов выиграет ровно один.
func (r *postgresTournamentRepository) Approve(ctx context.Context, exec SQLExecutor, id, adminID int, featured bool, at time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET status = $1, approved_by = $2, approved_at = $3, is_featured = $4
		WHERE id = $5 AND status = $6`
	result, err := executor.ExecContext(ctx, query,
		models.StatusOpen, adminID, at, featured, id, models.StatusPendingApproval)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStatusConflict)
}

func (r *postgresTournamentRepository) Reject(ctx context.Context, exec SQLExecutor, id, adminID int, reason string, at time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET status = $1, rejected_by = $2, rejected_at = $3, rejection_reason = $4
		WHERE id = $5 AND status = $6`
	result, err := executor.ExecContext(ctx, query,
		models.StatusRejected, adminID, at, reason, id, models.StatusPendingApproval)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStatusConflict)
}

func (r *postgresTournamentRepository) SetFeatured(ctx context.Context, exec SQLExecutor, id int, featured bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET is_featured = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, featured, id, models.StatusOpen)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStatusConflict)
}

// AdjustParticipantCount сдвигает счётчик участников. Снизу счётчик прижат к нулю,
// сверху его страхует CHECK-констрейнт таблицы (основная защита — блокировка строки
// в сервисном слое).
func (r *postgresTournamentRepository) AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id, delta int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET current_participant_count = GREATEST(0, current_participant_count + $1)
		WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, delta, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE tournaments SET banner_key = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, bannerKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament banner key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CountByStatus(ctx context.Context, statuses ...models.TournamentStatus) (int, error) {
	executor := r.getExecutor(nil)
	query := `SELECT COUNT(*) FROM tournaments`
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		strs := make([]string, len(statuses))
		for i, s := range statuses {
			strs[i] = string(s)
		}
		args = append(args, pq.Array(strs))
	}
	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) SumPrizePool(ctx context.Context, statuses ...models.TournamentStatus) (int64, error) {
	executor := r.getExecutor(nil)
	query := `SELECT COALESCE(SUM(prize_pool), 0) FROM tournaments`
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		strs := make([]string, len(statuses))
		for i, s := range statuses {
			strs[i] = string(s)
		}
		args = append(args, pq.Array(strs))
	}
	var sum int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum prize pool: %w", err)
	}
	return sum, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentInvalidOrg
			}
		case "23514":
			if pqErr.Constraint == "chk_tournaments_participant_count" {
				return ErrTournamentCapacityExceeded
			}
		}
	}
	return err
}
