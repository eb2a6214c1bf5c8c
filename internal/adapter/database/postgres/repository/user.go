package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "storeapi/internal/adapter/database/postgres"
	domain "storeapi/internal/core/domain"
	port "storeapi/internal/core/port"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func (ur *UserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var data domain.User

	err := row.Scan(
		&data.ID,
		&data.FirstName,
		&data.LastName,
		&data.Email,
		&data.PasswordHash,
		&data.Role,
		&data.RefreshToken,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, port.ErrNotFound
		}

		return domain.User{}, err
	}

	return data, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	query := ur.db.QueryBuilder.Select("*").
		From("users").
		Where(sq.Eq{"id": id}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	data, err := ur.scanUser(ur.db.QueryRow(ctx, stmt, args...))

	if err != nil && !errors.Is(err, port.ErrNotFound) {
		slog.Error("Error getting user by id", "error", err)
	}

	return data, err
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := ur.db.QueryBuilder.Select("*").
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	data, err := ur.scanUser(ur.db.QueryRow(ctx, stmt, args...))

	if err != nil && !errors.Is(err, port.ErrNotFound) {
		slog.Error("Error getting user by email", "error", err)
	}

	return data, err
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query := ur.db.QueryBuilder.Insert("users").
		Columns("first_name", "last_name", "email", "password_hash", "role", "refresh_token", "created_at", "updated_at").
		Values(user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.RefreshToken, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING *")

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	saved, err := ur.scanUser(ur.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		slog.Error("Error creating user", "error", err)
		return domain.User{}, err
	}

	return saved, nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	query := ur.db.QueryBuilder.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("email", user.Email).
		Set("role", user.Role).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		Suffix("RETURNING *")

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	updated, err := ur.scanUser(ur.db.QueryRow(ctx, stmt, args...))

	if err != nil && !errors.Is(err, port.ErrNotFound) {
		slog.Error("Error updating user", "error", err)
	}

	return updated, err
}

func (ur *UserRepository) UpdatePassword(ctx context.Context, email string, passwordHash string) error {
	query := ur.db.QueryBuilder.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"email": email})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	result, err := ur.db.Exec(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating password", "error", err)
		return err
	}

	if result.RowsAffected() == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (ur *UserRepository) SaveRefreshToken(ctx context.Context, userID int, refreshToken string) error {
	return ur.setRefreshToken(ctx, userID, refreshToken)
}

func (ur *UserRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	return ur.setRefreshToken(ctx, userID, "")
}

func (ur *UserRepository) setRefreshToken(ctx context.Context, userID int, refreshToken string) error {
	query := ur.db.QueryBuilder.Update("users").
		Set("refresh_token", refreshToken).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	result, err := ur.db.Exec(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error saving refresh token", "error", err)
		return err
	}

	if result.RowsAffected() == 0 {
		return port.ErrNotFound
	}

	return nil
}
