package service

import (
	"context"
	"errors"
	"time"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/port"
)

type AddressService struct {
	repo port.AddressRepository
}

var _ port.AddressService = (*AddressService)(nil)

func NewAddressService(repo port.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

func (s *AddressService) GetUserAddresses(ctx context.Context, userID int) ([]domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *AddressService) GetAddress(ctx context.Context, userID int, addressID int) (domain.Address, error) {
	address, err := s.repo.GetByID(ctx, userID, addressID)

	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.Address{}, ErrAddressNotFound
		}

		return domain.Address{}, err
	}

	return address, nil
}

func (s *AddressService) AddAddress(ctx context.Context, userID int, req *request.AddressRequest) (domain.Address, error) {
	address := domain.Address{
		UserID:      userID,
		AddressName: req.AddressName,
		Country:     req.Country,
		City:        req.City,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	saved, err := s.repo.Create(ctx, address)

	if err != nil {
		return domain.Address{}, err
	}

	return saved, nil
}

func (s *AddressService) UpdateAddress(ctx context.Context, userID int, addressID int, req *request.AddressRequest) (domain.Address, error) {
	address, err := s.repo.GetByID(ctx, userID, addressID)

	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return domain.Address{}, ErrAddressNotFound
		}

		return domain.Address{}, err
	}

	address.AddressName = req.AddressName
	address.Country = req.Country
	address.City = req.City
	address.Address = req.Address
	address.PostalCode = req.PostalCode
	address.PhoneNumber = req.PhoneNumber
	address.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, address)

	if err != nil {
		return domain.Address{}, err
	}

	return updated, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, userID int, addressID int) error {
	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return ErrAddressNotFound
		}

		return err
	}

	return nil
}
