package catalog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/snapnest/booking-backend/pkg/db"
	"github.com/snapnest/booking-backend/pkg/db/models"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

// Repository reads catalog rows from the relational store.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn, now: time.Now}
}

// ServiceLines lists the active service lines in display order.
func (r *Repository) ServiceLines(ctx context.Context) ([]ServiceLine, error) {
	var rows []models.ServiceLine
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, code ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list service lines: %w", err)
	}
	out := make([]ServiceLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, serviceLineFromModel(row))
	}
	return out, nil
}

// LoadSnapshot assembles the full catalog of one service line.
func (r *Repository) LoadSnapshot(ctx context.Context, serviceLine string) (*Snapshot, error) {
	conn := r.db.WithContext(ctx)

	var line models.ServiceLine
	if err := conn.Where("code = ? AND active = ?", serviceLine, true).First(&line).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("service line %q not found", serviceLine))
		}
		return nil, fmt.Errorf("load service line %q: %w", serviceLine, err)
	}

	var packages []models.Package
	if err := conn.Where("service_line = ? AND active = ?", serviceLine, true).
		Order("sort_order ASC, id ASC").
		Find(&packages).Error; err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var addons []models.AddOn
	if err := conn.Where("service_line = ? AND active = ?", serviceLine, true).
		Order("sort_order ASC, id ASC").
		Find(&addons).Error; err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}

	var codes []models.PartnerCode
	if err := conn.Order("code ASC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("load partner codes: %w", err)
	}

	var tiers []models.PropertySizeTier
	if err := conn.Order("sort_order ASC, min_sqft ASC").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("load size tiers: %w", err)
	}

	snap := &Snapshot{
		ServiceLine:  serviceLineFromModel(line),
		Packages:     make([]Package, 0, len(packages)),
		AddOns:       make([]AddOn, 0, len(addons)),
		PartnerCodes: make([]PartnerCode, 0, len(codes)),
		SizeTiers:    make([]SizeTier, 0, len(tiers)),
		LoadedAt:     r.now().UTC(),
	}
	for _, row := range packages {
		snap.Packages = append(snap.Packages, Package{
			ID:               row.ID,
			Name:             row.Name,
			Description:      row.Description,
			BasePrice:        row.BasePrice,
			IncludedServices: append([]string{}, row.IncludedServices...),
			Popular:          row.Popular,
			BundledAddonIDs:  append([]string{}, row.BundledAddonIDs...),
		})
	}
	for _, row := range addons {
		addon := AddOn{
			ID:                  row.ID,
			Name:                row.Name,
			Description:         row.Description,
			BasePrice:           row.BasePrice,
			PriceWithPackage:    row.PriceWithPackage,
			PriceWithoutPackage: row.PriceWithoutPackage,
			QuantityScaled:      row.QuantityScaled,
		}
		if row.UnitLabel != nil {
			addon.UnitLabel = *row.UnitLabel
		}
		snap.AddOns = append(snap.AddOns, addon)
	}
	for _, row := range codes {
		snap.PartnerCodes = append(snap.PartnerCodes, PartnerCode{
			Code:                   row.Code,
			PartnerName:            row.PartnerName,
			Active:                 row.Active,
			ValidFrom:              row.ValidFrom,
			ValidUntil:             row.ValidUntil,
			PackageDiscountPercent: row.PackageDiscountPercent,
			AddonDiscountPercent:   row.AddonDiscountPercent,
		})
	}
	for _, row := range tiers {
		snap.SizeTiers = append(snap.SizeTiers, SizeTier{
			Code:       row.Code,
			Label:      row.Label,
			Multiplier: row.Multiplier,
			MinSqft:    row.MinSqft,
			MaxSqft:    row.MaxSqft,
		})
	}
	return snap, nil
}

func serviceLineFromModel(row models.ServiceLine) ServiceLine {
	return ServiceLine{
		Code:             row.Code,
		Name:             row.Name,
		RequiresAddress:  row.RequiresAddress,
		AllowsAddonsOnly: row.AllowsAddonsOnly,
	}
}
