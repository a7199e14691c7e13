package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOn is an optional purchasable extra. The context prices are nullable;
// a null value falls back to BasePrice.
type AddOn struct {
	ServiceLine         string           `gorm:"column:service_line;primaryKey"`
	ID                  string           `gorm:"column:id;primaryKey"`
	Name                string           `gorm:"column:name;not null"`
	Description         string           `gorm:"column:description;not null;default:''"`
	BasePrice           decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	PriceWithPackage    *decimal.Decimal `gorm:"column:price_with_package;type:numeric(12,2)"`
	PriceWithoutPackage *decimal.Decimal `gorm:"column:price_without_package;type:numeric(12,2)"`
	QuantityScaled      bool             `gorm:"column:quantity_scaled;not null;default:false"`
	UnitLabel           *string          `gorm:"column:unit_label"`
	SortOrder           int              `gorm:"column:sort_order;not null;default:0"`
	Active              bool             `gorm:"column:active;not null;default:true"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName maps AddOn onto the addons table instead of add_ons.
func (AddOn) TableName() string { return "addons" }
