package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/snapnest/booking-backend/pkg/enums"
)

// BookingRequest is a submitted booking lead.
type BookingRequest struct {
	ID              uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	SessionID       string                     `gorm:"column:session_id;not null"`
	ServiceLine     string                     `gorm:"column:service_line;not null"`
	Status          enums.BookingRequestStatus `gorm:"column:status;type:booking_request_status;not null"`
	Name            string                     `gorm:"column:name;not null"`
	Email           string                     `gorm:"column:email;not null"`
	Phone           *string                    `gorm:"column:phone"`
	Address         *string                    `gorm:"column:address"`
	Suite           *string                    `gorm:"column:suite"`
	PropertySize    *string                    `gorm:"column:property_size"`
	PackageID       *string                    `gorm:"column:package_id"`
	AddonIDs        pq.StringArray             `gorm:"column:addon_ids;type:text[];default:ARRAY[]::text[]"`
	PartnerCode     *string                    `gorm:"column:partner_code"`
	PreferredDate   *string                    `gorm:"column:preferred_date"`
	PreferredTime   *string                    `gorm:"column:preferred_time"`
	Message         *string                    `gorm:"column:message"`
	TotalPrice      string                     `gorm:"column:total_price;not null"`
	ContactForPrice bool                       `gorm:"column:contact_for_price;not null;default:false"`
	Quote           json.RawMessage            `gorm:"column:quote;type:jsonb"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
