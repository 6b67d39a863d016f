package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumibyte/coupon-draw-service/internal/model"
	"github.com/lumibyte/coupon-draw-service/internal/service"
	"github.com/lumibyte/coupon-draw-service/pkg/database"
)

// UserPoolInterface defines the database operations needed by UserRepository.
type UserPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// UserRepository provides data access for users using pgx.
type UserRepository struct {
	pool UserPoolInterface
}

// NewUserRepository creates a new UserRepository with the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewUserRepositoryWithPool creates a new UserRepository with a custom pool
// interface. Primarily used for testing.
func NewUserRepositoryWithPool(pool UserPoolInterface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Insert creates a new user. Returns service.ErrPhoneExists on a duplicate phone.
func (r *UserRepository) Insert(ctx context.Context, phone string) (*model.User, error) {
	query := `INSERT INTO users (phone) VALUES ($1) RETURNING id, phone`

	var user model.User
	err := r.pool.QueryRow(ctx, query, phone).Scan(&user.ID, &user.Phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrPhoneExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// List returns all registered users, ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, phone FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Phone); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// Delete removes a user by id. Returns service.ErrUserNotFound if absent.
func (r *UserRepository) Delete(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}
	return nil
}

// Exists reports whether a user with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists %d: %w", id, err)
	}
	return exists, nil
}

// ExistsTx is the transaction-scoped equivalent of Exists, used by the draw
// engine's existence check so the read and the rollback it may
// trigger are part of the same transaction.
func (r *UserRepository) ExistsTx(ctx context.Context, tx database.TxQuerier, id int32) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists %d: %w", id, err)
	}
	return exists, nil
}
