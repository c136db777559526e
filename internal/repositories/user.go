package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
)

// uniqueViolation is the SQLSTATE raised for a UNIQUE constraint failure.
const uniqueViolation = "23505"

const userColumns = `id, username, email, user_data, status, created_at, updated_at`

// UserReadRepository runs read-only queries against the users table.
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user with the given id, deleted rows included.
func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)

	logQuery(query, []any{id}, user, err)

	if err != nil {
		return nil, mapError("get user", err)
	}
	return &user, nil
}

// List returns a page of users ordered by id and the total under the same filter.
// A nil status selects every row that is not deleted.
func (r *UserReadRepository) List(ctx context.Context, limit, offset int, status *models.UserStatus) ([]models.User, int64, error) {
	const filter = `
		WHERE ($1::TEXT IS NULL AND status <> 'deleted')
		   OR status = $1::TEXT
	`
	const query = `
		SELECT ` + userColumns + `
		FROM users
		` + filter + `
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`
	const countQuery = `SELECT COUNT(*) FROM users ` + filter

	statusArg := statusParam(status)

	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, query, statusArg, limit, offset)

	logQuery(query, []any{statusArg, limit, offset}, len(users), err)

	if err != nil {
		return nil, 0, mapError("list users", err)
	}

	var total int64
	err = r.db.GetContext(ctx, &total, countQuery, statusArg)

	logQuery(countQuery, []any{statusArg}, total, err)

	if err != nil {
		return nil, 0, mapError("count users", err)
	}

	return users, total, nil
}

// Ping performs a round trip and returns the server version string.
func (r *UserReadRepository) Ping(ctx context.Context) (string, error) {
	const query = `SELECT version()`

	var version string
	err := r.db.GetContext(ctx, &version, query)

	logQuery(query, nil, version, err)

	if err != nil {
		return "", fmt.Errorf("ping: %w: %w", models.ErrStoreUnavailable, err)
	}
	return version, nil
}

// UserWriteRepository runs mutations against the users table.
// Every method is a single statement.
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Insert creates a user. A nil userData stores an empty document.
func (r *UserWriteRepository) Insert(ctx context.Context, username, email string, userData models.UserData) (*models.User, error) {
	const query = `
		INSERT INTO users (username, email, user_data, status, created_at, updated_at)
		VALUES ($1, $2, COALESCE($3::JSON, '{}'::JSON), 'active', NOW(), NOW())
		RETURNING ` + userColumns

	args := []any{username, email, userData}

	var user models.User
	err := r.db.GetContext(ctx, &user, query, args...)

	logQuery(query, args, user, err)

	if err != nil {
		return nil, mapError("insert user", err)
	}
	return &user, nil
}

// Update applies the present fields of upd to a live user.
// A status of deleted is dropped; soft-deleted rows are never changed here.
func (r *UserWriteRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	const query = `
		UPDATE users
		SET username   = COALESCE($2::TEXT, username),
		    email      = COALESCE($3::TEXT, email),
		    user_data  = COALESCE($4::JSON, user_data),
		    status     = COALESCE($5::TEXT, status),
		    updated_at = NOW()
		WHERE id = $1 AND status <> 'deleted'
		RETURNING ` + userColumns

	status := upd.Status
	if status != nil && *status == models.UserStatusDeleted {
		status = nil
	}
	args := []any{id, upd.Username, upd.Email, upd.UserData, statusParam(status)}

	var user models.User
	err := r.db.GetContext(ctx, &user, query, args...)

	logQuery(query, args, user, err)

	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapError("update user", err)
	}

	// Nothing matched: either the id is unknown or the row is deleted.
	const statusQuery = `SELECT status FROM users WHERE id = $1`

	var current models.UserStatus
	err = r.db.GetContext(ctx, &current, statusQuery, id)

	logQuery(statusQuery, []any{id}, current, err)

	if err != nil {
		return nil, mapError("update user", err)
	}
	if current == models.UserStatusDeleted {
		return nil, models.ErrUserDeleted
	}
	// The row appeared between the two statements; report it as unknown.
	return nil, models.ErrUserNotFound
}

// SoftDelete marks a user deleted and refreshes updated_at. Repeating it is allowed.
func (r *UserWriteRepository) SoftDelete(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		UPDATE users
		SET status = 'deleted', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)

	logQuery(query, []any{id}, user, err)

	if err != nil {
		return nil, mapError("delete user", err)
	}
	return &user, nil
}

func statusParam(status *models.UserStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

// logQuery logs a statement on a single line with its arguments and outcome.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow("sql query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}

// mapError translates driver errors into the models error taxonomy.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrUserNotFound
	case errors.As(err, &pgErr):
		if pgErr.Code == uniqueViolation {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
	}
}
