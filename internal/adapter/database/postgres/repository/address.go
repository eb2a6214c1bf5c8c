package repository

import (
	"context"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "storeapi/internal/adapter/database/postgres"
	domain "storeapi/internal/core/domain"
	port "storeapi/internal/core/port"
)

type AddressRepository struct {
	db *database.DB
}

func NewAddressRepository(db *database.DB) port.AddressRepository {
	return &AddressRepository{db: db}
}

func (ar *AddressRepository) scanAddress(row pgx.Row) (domain.Address, error) {
	var data domain.Address

	err := row.Scan(
		&data.ID,
		&data.UserID,
		&data.AddressName,
		&data.Country,
		&data.City,
		&data.Address,
		&data.PostalCode,
		&data.PhoneNumber,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Address{}, port.ErrNotFound
		}

		return domain.Address{}, err
	}

	return data, nil
}

func (ar *AddressRepository) ListByUser(ctx context.Context, userID int) ([]domain.Address, error) {
	query := ar.db.QueryBuilder.Select("*").
		From("user_addresses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id ASC")

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := ar.db.Query(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error listing addresses", "error", err)
		return nil, err
	}

	defer rows.Close()

	addresses := []domain.Address{}

	for rows.Next() {
		address, err := ar.scanAddress(rows)

		if err != nil {
			return nil, err
		}

		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

func (ar *AddressRepository) GetByID(ctx context.Context, userID int, addressID int) (domain.Address, error) {
	query := ar.db.QueryBuilder.Select("*").
		From("user_addresses").
		Where(sq.Eq{"id": addressID, "user_id": userID}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Address{}, err
	}

	data, err := ar.scanAddress(ar.db.QueryRow(ctx, stmt, args...))

	if err != nil && !errors.Is(err, port.ErrNotFound) {
		slog.Error("Error getting address by id", "error", err)
	}

	return data, err
}

func (ar *AddressRepository) Create(ctx context.Context, address domain.Address) (domain.Address, error) {
	query := ar.db.QueryBuilder.Insert("user_addresses").
		Columns("user_id", "address_name", "country", "city", "address", "postal_code", "phone_number", "created_at", "updated_at").
		Values(address.UserID, address.AddressName, address.Country, address.City, address.Address, address.PostalCode, address.PhoneNumber, address.CreatedAt, address.UpdatedAt).
		Suffix("RETURNING *")

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Address{}, err
	}

	saved, err := ar.scanAddress(ar.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		slog.Error("Error creating address", "error", err)
		return domain.Address{}, err
	}

	return saved, nil
}

func (ar *AddressRepository) Update(ctx context.Context, address domain.Address) (domain.Address, error) {
	query := ar.db.QueryBuilder.Update("user_addresses").
		Set("address_name", address.AddressName).
		Set("country", address.Country).
		Set("city", address.City).
		Set("address", address.Address).
		Set("postal_code", address.PostalCode).
		Set("phone_number", address.PhoneNumber).
		Set("updated_at", address.UpdatedAt).
		Where(sq.Eq{"id": address.ID, "user_id": address.UserID}).
		Suffix("RETURNING *")

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Address{}, err
	}

	updated, err := ar.scanAddress(ar.db.QueryRow(ctx, stmt, args...))

	if err != nil && !errors.Is(err, port.ErrNotFound) {
		slog.Error("Error updating address", "error", err)
	}

	return updated, err
}

func (ar *AddressRepository) Delete(ctx context.Context, userID int, addressID int) error {
	stmt, args, err := ar.db.QueryBuilder.Delete("user_addresses").
		Where(sq.Eq{"id": addressID, "user_id": userID}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := ar.db.Exec(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error deleting address", "error", err)
		return err
	}

	if result.RowsAffected() == 0 {
		return port.ErrNotFound
	}

	return nil
}
