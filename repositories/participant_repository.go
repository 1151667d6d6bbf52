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
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: user already registered for this tournament")
	ErrParticipantUserInvalid       = errors.New("participant user reference invalid")
	ErrParticipantTournamentInvalid = errors.New("participant tournament reference invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	Exists(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (bool, error)
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Participant, error)
	CountAll(ctx context.Context) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (tournament_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, registered_at`

	err := executor.QueryRowContext(ctx, query, p.TournamentID, p.UserID, p.Status).
		Scan(&p.ID, &p.RegisteredAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "participants_tournament_id_user_id_key" {
					return ErrParticipantConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "participants_tournament_id_fkey":
					return ErrParticipantTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) Exists(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM participants WHERE tournament_id = $1 AND user_id = $2)`
	var exists bool
	if err := executor.QueryRowContext(ctx, query, tournamentID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant existence: %w", err)
	}
	return exists, nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM participants WHERE tournament_id = $1 AND user_id = $2`
	result, err := executor.ExecContext(ctx, query, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT p.id, p.tournament_id, p.user_id, p.status, p.registered_at,
		       u.id, u.nickname, u.role, u.rank, u.created_at
		FROM participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.tournament_id = $1
		ORDER BY p.registered_at ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.UserID, &p.Status, &p.RegisteredAt,
			&u.ID, &u.Nickname, &u.Role, &u.Rank, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		p.User = &u
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountAll(ctx context.Context) (int, error) {
	executor := r.getExecutor(nil)
	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}
