package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartnerCode is a referral code. Active is nullable; only an explicit false
// disables the code.
type PartnerCode struct {
	Code                   string           `gorm:"column:code;primaryKey"`
	PartnerName            string           `gorm:"column:partner_name;not null;default:''"`
	Active                 *bool            `gorm:"column:active"`
	ValidFrom              *time.Time       `gorm:"column:valid_from"`
	ValidUntil             *time.Time       `gorm:"column:valid_until"`
	PackageDiscountPercent *decimal.Decimal `gorm:"column:package_discount_percent;type:numeric(5,2)"`
	AddonDiscountPercent   *decimal.Decimal `gorm:"column:addon_discount_percent;type:numeric(5,2)"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
