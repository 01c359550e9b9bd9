package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
)

// AddressDTO is the transport shape returned to storefront clients.
type AddressDTO struct {
	ID         uuid.UUID         `json:"id"`
	FullName   string            `json:"full_name"`
	Phone      string            `json:"phone"`
	Line1      string            `json:"line1"`
	Line2      *string           `json:"line2,omitempty"`
	City       string            `json:"city"`
	State      string            `json:"state"`
	PostalCode string            `json:"postal_code"`
	Country    string            `json:"country"`
	Type       enums.AddressType `json:"type"`
	IsPrimary  bool              `json:"is_primary"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CreateAddressRequest is the payload for adding an address-book entry.
type CreateAddressRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Phone      string  `json:"phone" validate:"required"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country,omitempty"`
	Type       string  `json:"type,omitempty"`
	IsPrimary  bool    `json:"is_primary"`
}

// UpdateAddressRequest carries the mutable fields of an existing entry.
type UpdateAddressRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Line1      *string `json:"line1,omitempty"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	Type       *string `json:"type,omitempty"`
}

func FromModel(a *models.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		ID:         a.ID,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Type:       a.Type,
		IsPrimary:  a.IsPrimary,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func fromModels(rows []models.Address) []AddressDTO {
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
