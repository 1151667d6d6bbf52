package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenagg/tournament-core/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository — узкий взгляд на справочник пользователей: ядру нужны
// только identity и роль. Учётные данные живут в сервисе аутентификации.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	RoleOf(ctx context.Context, id int) (models.UserRole, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, nickname, role, rank, created_at FROM users WHERE id = $1`
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Nickname, &u.Role, &u.Rank, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) RoleOf(ctx context.Context, id int) (models.UserRole, error) {
	query := `SELECT role FROM users WHERE id = $1`
	var role models.UserRole
	err := r.db.QueryRowContext(ctx, query, id).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get role for user %d: %w", id, err)
	}
	return role, nil
}
