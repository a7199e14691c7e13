package catalog

import (
	"strings"
	"time"
)

// Snapshot is the read-only catalog of one service line. Callers must treat it
// as immutable; the provider shares snapshots between sessions.
type Snapshot struct {
	ServiceLine  ServiceLine   `json:"service_line"`
	Packages     []Package     `json:"packages"`
	AddOns       []AddOn       `json:"addons"`
	PartnerCodes []PartnerCode `json:"partner_codes"`
	SizeTiers    []SizeTier    `json:"size_tiers"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// Package returns the package with the given id.
func (s *Snapshot) Package(id string) (Package, bool) {
	if s == nil {
		return Package{}, false
	}
	for _, pkg := range s.Packages {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return Package{}, false
}

// AddOn returns the add-on with the given id.
func (s *Snapshot) AddOn(id string) (AddOn, bool) {
	if s == nil {
		return AddOn{}, false
	}
	for _, addon := range s.AddOns {
		if addon.ID == id {
			return addon, true
		}
	}
	return AddOn{}, false
}

// PartnerCode resolves a code case-insensitively. It returns nil when no record matches.
func (s *Snapshot) PartnerCode(code string) *PartnerCode {
	if s == nil {
		return nil
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	for i := range s.PartnerCodes {
		if strings.EqualFold(s.PartnerCodes[i].Code, code) {
			rec := s.PartnerCodes[i]
			return &rec
		}
	}
	return nil
}

// PurchasableAddOns lists the add-ons that are not bundled into the selected
// package, in catalog order. An empty packageID means no package is selected.
func (s *Snapshot) PurchasableAddOns(packageID string) []AddOn {
	if s == nil {
		return nil
	}
	pkg, hasPackage := s.Package(packageID)
	out := make([]AddOn, 0, len(s.AddOns))
	for _, addon := range s.AddOns {
		if hasPackage && pkg.Bundles(addon.ID) {
			continue
		}
		out = append(out, addon)
	}
	return out
}
