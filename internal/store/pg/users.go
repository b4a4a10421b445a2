package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id::text, username, email, provider, coalesce(role_id::text, ''), confirmed, blocked, created_at, updated_at`

func (r *userRepo) Find(ctx context.Context, f repository.UserFilter) ([]repository.User, error) {
	var (
		where []string
		args  []any
	)
	if f.Email != "" {
		args = append(args, f.Email)
		where = append(where, fmt.Sprintf("lower(email) = lower($%d)", len(args)))
	}
	if f.Provider != "" {
		args = append(args, f.Provider)
		where = append(where, fmt.Sprintf("provider = $%d", len(args)))
	}
	q := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: find users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("pg: scan users: %w", err)
	}
	if users == nil {
		users = []repository.User{}
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Provider == "" {
		return nil, repository.ErrInvalidInput
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, provider, role_id, confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, nullif($5, '')::bigint, $6, $7, $7)
		RETURNING `+userColumns,
		uuid.New(), in.Username, in.Email, in.Provider, in.RoleID, in.Confirmed, now)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("pg: create user: %w", mapError(err))
	}
	return &u, nil
}

func scanUser(row pgx.Row) (repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Provider, &u.RoleID,
		&u.Confirmed, &u.Blocked, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type roleRepo struct {
	pool *pgxpool.Pool
}

func (r *roleRepo) FindOneByType(ctx context.Context, roleType string) (*repository.Role, error) {
	var role repository.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, name, type, description FROM roles WHERE type = $1`, roleType,
	).Scan(&role.ID, &role.Name, &role.Type, &role.Description)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: find role: %w", err)
	}
	return &role, nil
}
