package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PropertySizeTier maps a square-footage band to a price multiplier.
type PropertySizeTier struct {
	Code       string          `gorm:"column:code;primaryKey"`
	Label      string          `gorm:"column:label;not null;default:''"`
	Multiplier decimal.Decimal `gorm:"column:multiplier;type:numeric(6,3);not null"`
	MinSqft    int             `gorm:"column:min_sqft;not null"`
	MaxSqft    *int            `gorm:"column:max_sqft"`
	SortOrder  int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
