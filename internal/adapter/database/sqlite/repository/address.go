package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"storeapi/internal/adapter/database/sqlite"
	"storeapi/internal/core/domain"
	"storeapi/internal/core/port"
	tel "storeapi/internal/core/telemetry"
)

type AddressRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewAddressRepository(db *sqlite.DB, telemetry port.Telemetry) port.AddressRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &AddressRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

func (ar *AddressRepository) ListByUser(ctx context.Context, userID int) ([]domain.Address, error) {
	ctx, span := ar.telemetry.StartRepositorySpan(ctx, "ListByUser", "address", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "user_addresses",
		"user.id":   userID,
	})
	defer span.End()

	query := ar.db.QueryBuilder.Select("*").
		From("user_addresses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id ASC")

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := ar.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	addresses := []domain.Address{}

	if err := ar.scanner.ScanRowsToSlice(rows, &addresses); err != nil {
		slog.Error("Error listing addresses", "error", err)
		return nil, err
	}

	return addresses, nil
}

func (ar *AddressRepository) GetByID(ctx context.Context, userID int, addressID int) (domain.Address, error) {
	ctx, span := ar.telemetry.StartRepositorySpan(ctx, "GetByID", "address", map[string]interface{}{
		"db.system":  "sqlite",
		"db.table":   "user_addresses",
		"user.id":    userID,
		"address.id": addressID,
	})
	defer span.End()

	query := ar.db.QueryBuilder.Select("*").
		From("user_addresses").
		Where(sq.Eq{"id": addressID, "user_id": userID}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Address{}, err
	}

	var data domain.Address

	rows, err := ar.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return domain.Address{}, err
	}

	defer rows.Close()

	err = ar.scanner.ScanRowToStruct(rows, &data)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, port.ErrNotFound
		}

		slog.Error("Error getting address by id", "error", err)
		return domain.Address{}, err
	}

	return data, nil
}

func (ar *AddressRepository) Create(ctx context.Context, address domain.Address) (domain.Address, error) {
	ctx, span := ar.telemetry.StartRepositorySpan(ctx, "Create", "address", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "user_addresses",
		"db.operation": "INSERT",
		"user.id":      address.UserID,
	})
	defer span.End()

	startTime := time.Now()

	// Use transaction to ensure same connection
	tx, err := ar.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("Error starting transaction", "error", err)
		return domain.Address{}, err
	}
	defer tx.Rollback()

	query := ar.db.QueryBuilder.Insert("user_addresses").
		Columns("user_id", "address_name", "country", "city", "address", "postal_code", "phone_number", "created_at", "updated_at").
		Values(address.UserID, address.AddressName, address.Country, address.City, address.Address, address.PostalCode, address.PhoneNumber, address.CreatedAt, address.UpdatedAt)

	stmt, args, err := query.ToSql()

	if err != nil {
		slog.Error("Error creating address", "error", err)
		return domain.Address{}, err
	}

	result, err := tx.ExecContext(ctx, stmt, args...)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		ar.telemetry.RecordRepositoryOperation(ctx, "Create", "address", time.Since(startTime), err)
		slog.Error("Error creating address", "error", err)
		return domain.Address{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Address{}, err
	}

	saved, err := ar.getByIDTx(ctx, tx, int(id))

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		ar.telemetry.RecordRepositoryOperation(ctx, "Create", "address", time.Since(startTime), err)
		return domain.Address{}, err
	}

	ar.telemetry.RecordBusinessEvent(ctx, "created", "address", strconv.Itoa(saved.ID), saved.UserID, map[string]interface{}{
		"address.name": saved.AddressName,
	})
	ar.telemetry.RecordRepositoryOperation(ctx, "Create", "address", time.Since(startTime), nil)

	return saved, tx.Commit()
}

func (ar *AddressRepository) getByIDTx(ctx context.Context, tx *sql.Tx, id int) (domain.Address, error) {
	query := ar.db.QueryBuilder.Select("*").
		From("user_addresses").
		Where(sq.Eq{"id": id}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Address{}, err
	}

	var data domain.Address

	rows, err := tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return domain.Address{}, err
	}
	defer rows.Close()

	err = ar.scanner.ScanRowToStruct(rows, &data)

	if err != nil {
		slog.Error("Error getting address by id", "error", err)
		return domain.Address{}, err
	}

	return data, nil
}

func (ar *AddressRepository) Update(ctx context.Context, address domain.Address) (domain.Address, error) {
	ctx, span := ar.telemetry.StartRepositorySpan(ctx, "Update", "address", map[string]interface{}{
		"db.system":  "sqlite",
		"db.table":   "user_addresses",
		"user.id":    address.UserID,
		"address.id": address.ID,
	})
	defer span.End()

	query := ar.db.QueryBuilder.Update("user_addresses").
		Set("address_name", address.AddressName).
		Set("country", address.Country).
		Set("city", address.City).
		Set("address", address.Address).
		Set("postal_code", address.PostalCode).
		Set("phone_number", address.PhoneNumber).
		Set("updated_at", address.UpdatedAt).
		Where(sq.Eq{"id": address.ID, "user_id": address.UserID})

	stmt, args, err := query.ToSql()

	if err != nil {
		slog.Error("Error updating address", "error", err)
		return domain.Address{}, err
	}

	result, err := ar.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating address", "error", err)
		return domain.Address{}, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Address{}, err
	}

	if rowsAffected == 0 {
		return domain.Address{}, port.ErrNotFound
	}

	return ar.GetByID(ctx, address.UserID, address.ID)
}

func (ar *AddressRepository) Delete(ctx context.Context, userID int, addressID int) error {
	ctx, span := ar.telemetry.StartRepositorySpan(ctx, "Delete", "address", map[string]interface{}{
		"db.system":  "sqlite",
		"db.table":   "user_addresses",
		"user.id":    userID,
		"address.id": addressID,
	})
	defer span.End()

	query := ar.db.QueryBuilder.Delete("user_addresses").
		Where(sq.Eq{"id": addressID, "user_id": userID})

	stmt, args, err := query.ToSql()

	if err != nil {
		slog.Error("Error deleting address", "error", err)
		return err
	}

	result, err := ar.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error deleting address", "error", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		slog.Error("Error getting rows affected", "error", err)
		return err
	}

	if rowsAffected == 0 {
		return port.ErrNotFound
	}

	return nil
}
