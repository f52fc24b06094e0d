// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/auth"
	"stockroom/internal/infrastructure/storage/postgres"
)

const userTable = "sys_users"

var userCols = postgres.ExtractDBColumns[auth.User]()

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)
	filtered := make(map[string]any, len(userCols))
	for _, col := range userCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(userTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", postgres.MapError(err, "user", user.Email))
	}

	return nil
}

func (r *UserRepo) getOne(ctx context.Context, cond squirrel.Eq, key string) (*auth.User, error) {
	q := r.builder().
		Select(userCols...).
		From(userTable).
		Where(cond).
		Where("deleted_at IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, email)
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)
	filtered := make(map[string]any, len(userCols))
	for _, col := range userCols {
		switch col {
		case "id", "created_at", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Update(userTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Where(squirrel.Eq{"version": user.Version}).
		Where("deleted_at IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", postgres.MapError(err, "user", user.ID))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrencyConflict("user", user.ID)
	}

	user.Version++
	return nil
}

// Delete soft-deletes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	q := r.builder().
		Update(userTable).
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("is_active", false).
		Where(squirrel.Eq{"id": userID}).
		Where("deleted_at IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// List retrieves users with filtering and pagination.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int, error) {
	q := r.builder().
		Select(userCols...).
		From(userTable).
		Where("deleted_at IS NULL")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Role != "" {
		q = q.Where(squirrel.Eq{"role": filter.Role})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q = q.OrderBy("email ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	users := make([]auth.User, 0)
	if err := pgxscan.Select(ctx, querier, &users, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}

	return users, total, nil
}

// Exists checks if an email is already registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sys_users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}

	return exists, nil
}

// Ensure interface compliance
var _ auth.UserRepository = (*UserRepo)(nil)
