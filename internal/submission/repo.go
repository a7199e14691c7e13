package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snapnest/booking-backend/pkg/db"
	"github.com/snapnest/booking-backend/pkg/db/models"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

// Repository persists submitted booking requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Create inserts a booking request row.
func (r *Repository) Create(ctx context.Context, req *models.BookingRequest) error {
	if req == nil {
		return fmt.Errorf("booking request is required")
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "booking request already stored")
		}
		return err
	}
	return nil
}

// FindByID loads a booking request by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BookingRequest, error) {
	var req models.BookingRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "booking request not found")
		}
		return nil, err
	}
	return &req, nil
}
