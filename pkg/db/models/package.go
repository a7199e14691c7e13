package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Package is an offering tier inside a service line.
type Package struct {
	ServiceLine      string          `gorm:"column:service_line;primaryKey"`
	ID               string          `gorm:"column:id;primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Description      string          `gorm:"column:description;not null;default:''"`
	BasePrice        decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	IncludedServices pq.StringArray  `gorm:"column:included_services;type:text[];default:ARRAY[]::text[]"`
	Popular          bool            `gorm:"column:popular;not null;default:false"`
	BundledAddonIDs  pq.StringArray  `gorm:"column:bundled_addon_ids;type:text[];default:ARRAY[]::text[]"`
	SortOrder        int             `gorm:"column:sort_order;not null;default:0"`
	Active           bool            `gorm:"column:active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
