package address

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// Service manages the per-user address book.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetPrimary(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error)
}

type service struct {
	db *db.Client
}

// NewService constructs the address-book service.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: client}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	repo := NewRepository(s.db.DB())
	rows, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return fromModels(rows), nil
}

// Create inserts a new entry. The user's first address always becomes primary;
// otherwise the entry is primary only when requested, demoting the previous
// primary inside the same transaction.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressDTO, error) {
	row, err := buildAddress(userID, req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count addresses")
		}
		row.IsPrimary = count == 0 || req.IsPrimary

		if row.IsPrimary {
			if err := repo.DemotePrimary(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "demote primary")
			}
		}
		if err := repo.Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error) {
	var updated *models.Address
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		applyUpdates(row, req)
		if row.Type != "" && !row.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
		}
		if err := repo.Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete removes an entry. When the primary is removed and other entries
// remain, the newest remaining entry is promoted so the book never loses its
// single primary.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		if _, err := repo.Delete(ctx, userID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
		}

		if row.IsPrimary {
			newest, err := repo.NewestByUser(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find replacement primary")
			}
			if newest != nil {
				if _, err := repo.SetPrimary(ctx, userID, newest.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote replacement primary")
				}
			}
		}
		return nil
	})
}

// SetPrimary promotes the entry, demoting the previous primary in the same
// transaction.
func (s *service) SetPrimary(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error) {
	var promoted *models.Address
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		row, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		if err := repo.DemotePrimary(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "demote primary")
		}
		if _, err := repo.SetPrimary(ctx, userID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set primary")
		}
		row.IsPrimary = true
		promoted = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(promoted), nil
}

func buildAddress(userID uuid.UUID, req CreateAddressRequest) (*models.Address, error) {
	addrType := enums.AddressTypeHome
	if strings.TrimSpace(req.Type) != "" {
		parsed, err := enums.ParseAddressType(req.Type)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
		}
		addrType = parsed
	}

	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "US"
	}

	return &models.Address{
		UserID:     userID,
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      strings.TrimSpace(req.Phone),
		Line1:      strings.TrimSpace(req.Line1),
		Line2:      req.Line2,
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    country,
		Type:       addrType,
	}, nil
}

func applyUpdates(row *models.Address, req UpdateAddressRequest) {
	if req.FullName != nil {
		row.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		row.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Line1 != nil {
		row.Line1 = strings.TrimSpace(*req.Line1)
	}
	if req.Line2 != nil {
		row.Line2 = req.Line2
	}
	if req.City != nil {
		row.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		row.State = strings.TrimSpace(*req.State)
	}
	if req.PostalCode != nil {
		row.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.Country != nil {
		row.Country = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if req.Type != nil {
		row.Type = enums.AddressType(strings.TrimSpace(*req.Type))
	}
}
