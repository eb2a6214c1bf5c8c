package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"storeapi/internal/adapter/database/sqlite"
	"storeapi/internal/core/domain"
	"storeapi/internal/core/port"
	tel "storeapi/internal/core/telemetry"
)

type UserRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByID", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   id,
	})
	defer span.End()

	query := ur.db.QueryBuilder.Select("*").
		From("users").
		Where(sq.Eq{"id": id}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var data domain.User

	rows, err := ur.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return domain.User{}, err
	}

	defer rows.Close()

	err = ur.scanner.ScanRowToStruct(rows, &data)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, port.ErrNotFound
		}

		slog.Error("Error getting user by id", "error", err)
		return domain.User{}, err
	}

	return data, nil
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "GetByEmail", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	query := ur.db.QueryBuilder.Select("*").
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var data domain.User

	rows, err := ur.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return domain.User{}, err
	}

	defer rows.Close()

	err = ur.scanner.ScanRowToStruct(rows, &data)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, port.ErrNotFound
		}

		slog.Error("Error getting user by email", "error", err)
		return domain.User{}, err
	}

	return data, nil
}

func (ur *UserRepository) getByEmailTx(ctx context.Context, tx *sql.Tx, email string) (domain.User, error) {
	query := ur.db.QueryBuilder.Select("*").
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var data domain.User

	rows, err := tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return domain.User{}, err
	}
	defer rows.Close()

	err = ur.scanner.ScanRowToStruct(rows, &data)

	if err != nil {
		slog.Error("Error getting user by email", "error", err)
		return domain.User{}, err
	}

	return data, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "INSERT",
	})
	defer span.End()

	// Use transaction to ensure same connection
	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("Error starting transaction", "error", err)
		return domain.User{}, err
	}
	defer tx.Rollback()

	query := ur.db.QueryBuilder.Insert("users").
		Columns("first_name", "last_name", "email", "password_hash", "role", "refresh_token", "created_at", "updated_at").
		Values(user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.RefreshToken, user.CreatedAt, user.UpdatedAt)

	stmt, args, err := query.ToSql()

	if err != nil {
		slog.Error("Error creating user", "error", err)
		return domain.User{}, err
	}

	_, err = tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error creating user", "error", err)
		return domain.User{}, err
	}

	saved, err := ur.getByEmailTx(ctx, tx, user.Email)

	if err != nil {
		return domain.User{}, err
	}

	return saved, tx.Commit()
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Update", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   user.ID,
	})
	defer span.End()

	query := ur.db.QueryBuilder.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("email", user.Email).
		Set("role", user.Role).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID})

	stmt, args, err := query.ToSql()

	if err != nil {
		slog.Error("Error updating user", "error", err)
		return domain.User{}, err
	}

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating user", "error", err)
		return domain.User{}, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}

	if rowsAffected == 0 {
		return domain.User{}, port.ErrNotFound
	}

	return ur.GetByID(ctx, user.ID)
}

func (ur *UserRepository) UpdatePassword(ctx context.Context, email string, passwordHash string) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "UpdatePassword", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	query := ur.db.QueryBuilder.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"email": email})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating password", "error", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (ur *UserRepository) SaveRefreshToken(ctx context.Context, userID int, refreshToken string) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "SaveRefreshToken", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   userID,
	})
	defer span.End()

	return ur.setRefreshToken(ctx, userID, refreshToken)
}

func (ur *UserRepository) ClearRefreshToken(ctx context.Context, userID int) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "ClearRefreshToken", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
		"user.id":   userID,
	})
	defer span.End()

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

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error saving refresh token", "error", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return port.ErrNotFound
	}

	return nil
}
