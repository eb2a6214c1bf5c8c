package port

import (
	"context"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
)

type AddressRepository interface {
	ListByUser(ctx context.Context, userID int) ([]domain.Address, error)
	GetByID(ctx context.Context, userID int, addressID int) (domain.Address, error)
	Create(ctx context.Context, address domain.Address) (domain.Address, error)
	Update(ctx context.Context, address domain.Address) (domain.Address, error)
	Delete(ctx context.Context, userID int, addressID int) error
}

type AddressService interface {
	GetUserAddresses(ctx context.Context, userID int) ([]domain.Address, error)
	GetAddress(ctx context.Context, userID int, addressID int) (domain.Address, error)
	AddAddress(ctx context.Context, userID int, req *request.AddressRequest) (domain.Address, error)
	UpdateAddress(ctx context.Context, userID int, addressID int, req *request.AddressRequest) (domain.Address, error)
	DeleteAddress(ctx context.Context, userID int, addressID int) error
}
