package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/cookie-auth-service/internal/core/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	db DBTX
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db DBTX) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

// Create inserts a new user and returns the generated user ID.
func (r *PgxUserRepository) Create(ctx context.Context, user domain.NewUser) (string, error) {
	query := `INSERT INTO users (uid, first_name, sur_name, user_name, password_hash) VALUES ($1, $2, $3, $4, $5)`

	id := uuid.NewString()
	_, err := r.db.Exec(ctx, query, id, user.FirstName, user.SurName, user.UserName, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("insert user %q: %w", user.UserName, domain.ErrDuplicateUser)
		}
		return "", unavailable("insert user", err)
	}

	return id, nil
}

// GetByUserName returns the user matching the given username.
func (r *PgxUserRepository) GetByUserName(ctx context.Context, userName string) (*domain.UserRecord, error) {
	query := `SELECT uid::text, first_name, sur_name, user_name, password_hash FROM users WHERE user_name = $1`
	return r.getOne(ctx, query, userName)
}

// GetByID returns the user with the given ID.
func (r *PgxUserRepository) GetByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	query := `SELECT uid::text, first_name, sur_name, user_name, password_hash FROM users WHERE uid = $1`
	return r.getOne(ctx, query, id)
}

func (r *PgxUserRepository) getOne(ctx context.Context, query string, arg string) (*domain.UserRecord, error) {
	var row domain.UserRecord
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&row.ID, &row.FirstName, &row.SurName, &row.UserName, &row.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("query user", err)
	}

	return &row, nil
}

// List returns every user ordered by username. The password column is never selected.
func (r *PgxUserRepository) List(ctx context.Context) ([]domain.UserInfo, error) {
	query := `SELECT uid::text, first_name, sur_name, user_name FROM users ORDER BY user_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer rows.Close()

	users := make([]domain.UserInfo, 0)
	for rows.Next() {
		var u domain.UserInfo
		if err := rows.Scan(&u.ID, &u.FirstName, &u.SurName, &u.UserName); err != nil {
			return nil, unavailable("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate users", err)
	}

	return users, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

var _ domain.UserRepository = (*PgxUserRepository)(nil)
