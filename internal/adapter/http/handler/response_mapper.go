package handler

import (
	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/response"
)

func toAddressResponse(address domain.Address) response.AddressResponse {
	return response.AddressResponse{
		ID:          address.ID,
		AddressName: address.AddressName,
		Country:     address.Country,
		City:        address.City,
		Address:     address.Address,
		PostalCode:  address.PostalCode,
		PhoneNumber: address.PhoneNumber,
		CreatedAt:   address.CreatedAt,
		UpdatedAt:   address.UpdatedAt,
	}
}
