package models

import "time"

// ServiceLine is a business line such as listing photography or personal branding.
type ServiceLine struct {
	Code             string    `gorm:"column:code;primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	RequiresAddress  bool      `gorm:"column:requires_address;not null;default:false"`
	AllowsAddonsOnly bool      `gorm:"column:allows_addons_only;not null;default:false"`
	SortOrder        int       `gorm:"column:sort_order;not null;default:0"`
	Active           bool      `gorm:"column:active;not null;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
