package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenagg/tournament-core/models"
	"github.com/lib/pq"
)

var (
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationUserInvalid = errors.New("invitation user reference invalid")
)

type InvitationRepository interface {
	// Upsert создаёт приглашение или обновляет существующее для пары
	// (tournament_id, user_id): статус сбрасывается в pending, время обновляется.
	// Повторное приглашение идемпотентно.
	Upsert(ctx context.Context, exec SQLExecutor, inv *models.Invitation) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Invitation, error)
	ListPendingByUser(ctx context.Context, userID int) ([]models.Invitation, error)
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

func (r *postgresInvitationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresInvitationRepository) Upsert(ctx context.Context, exec SQLExecutor, inv *models.Invitation) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO invitations (tournament_id, user_id, invited_by, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id, user_id) DO UPDATE
		SET invited_by = EXCLUDED.invited_by,
		    status = EXCLUDED.status,
		    invited_at = NOW()
		RETURNING id, status, invited_at`

	err := executor.QueryRowContext(ctx, query,
		inv.TournamentID, inv.UserID, inv.InvitedBy, models.InvitationPending,
	).Scan(&inv.ID, &inv.Status, &inv.InvitedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "invitations_user_id_fkey" {
				return ErrInvitationUserInvalid
			}
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to upsert invitation: %w", err)
	}
	return nil
}

func (r *postgresInvitationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]models.Invitation, 0)
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.TournamentID, &inv.UserID, &inv.InvitedBy, &inv.Status, &inv.InvitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitation rows: %w", err)
	}
	return invitations, nil
}

func (r *postgresInvitationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Invitation, error) {
	query := `
		SELECT id, tournament_id, user_id, invited_by, status, invited_at
		FROM invitations
		WHERE tournament_id = $1
		ORDER BY invited_at DESC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresInvitationRepository) ListPendingByUser(ctx context.Context, userID int) ([]models.Invitation, error) {
	query := `
		SELECT id, tournament_id, user_id, invited_by, status, invited_at
		FROM invitations
		WHERE user_id = $1 AND status = $2
		ORDER BY invited_at DESC`
	return r.list(ctx, query, userID, models.InvitationPending)
}
