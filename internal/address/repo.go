package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
)

// Repository exposes address-book persistence operations. All lookups are
// scoped by owner so one user can never touch another's entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an address repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's addresses, primary first, newest after.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one address owned by the given user.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	var row models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountByUser reports how many addresses the user has saved.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Create inserts the address row.
func (r *Repository) Create(ctx context.Context, row *models.Address) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Save persists all fields of an existing row.
func (r *Repository) Save(ctx context.Context, row *models.Address) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// Delete removes one address owned by the given user. Returns the number of
// rows removed so callers can distinguish a missing entry.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Address{})
	return result.RowsAffected, result.Error
}

// DemotePrimary clears the primary flag on every address the user owns.
// Runs before promoting a new primary inside the same transaction.
func (r *Repository) DemotePrimary(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		UpdateColumn("is_primary", false).Error
}

// SetPrimary marks the given address primary.
func (r *Repository) SetPrimary(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND id = ?", userID, id).
		UpdateColumn("is_primary", true)
	return result.RowsAffected, result.Error
}

// NewestByUser returns the most recently created address, or nil when none exist.
func (r *Repository) NewestByUser(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var row models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
