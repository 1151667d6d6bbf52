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
	ErrStaffNotFound = errors.New("staff assignment not found")
	ErrStaffConflict = errors.New("staff role already assigned for this tournament")
)

type StaffRepository interface {
	Create(ctx context.Context, exec SQLExecutor, sa *models.StaffAssignment) error
	GetRole(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (models.StaffRole, error)
}

type postgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) StaffRepository {
	return &postgresStaffRepository{db: db}
}

func (r *postgresStaffRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStaffRepository) Create(ctx context.Context, exec SQLExecutor, sa *models.StaffAssignment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_staff (tournament_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, assigned_at`

	err := executor.QueryRowContext(ctx, query, sa.TournamentID, sa.UserID, sa.Role).
		Scan(&sa.ID, &sa.AssignedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrStaffConflict
		}
		return fmt.Errorf("failed to create staff assignment: %w", err)
	}
	return nil
}

func (r *postgresStaffRepository) GetRole(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (models.StaffRole, error) {
	executor := r.getExecutor(exec)
	query := `SELECT role FROM tournament_staff WHERE tournament_id = $1 AND user_id = $2`
	var role models.StaffRole
	err := executor.QueryRowContext(ctx, query, tournamentID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrStaffNotFound
		}
		return "", fmt.Errorf("failed to get staff role: %w", err)
	}
	return role, nil
}
