package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type IssueKind string

const (
	IssueTierOverlap        IssueKind = "tier_overlap"
	IssueTierBounds         IssueKind = "tier_bounds"
	IssueTierMultiplier     IssueKind = "tier_multiplier"
	IssueInvertedAddonPrice IssueKind = "inverted_addon_price"
	IssueDiscountRange      IssueKind = "discount_out_of_range"
	IssueUnknownBundledID   IssueKind = "unknown_bundled_addon"
	IssueDuplicateID        IssueKind = "duplicate_id"
	IssueNegativePrice      IssueKind = "negative_price"
)

// Issue is a catalog anomaly. Pricing never tries to repair these; they are
// reported so the data can be fixed at the source.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%s]: %s", i.Kind, i.Subject, i.Detail)
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Audit inspects the snapshot for data the pricing rules cannot price unambiguously.
func (s *Snapshot) Audit() []Issue {
	if s == nil {
		return nil
	}
	var issues []Issue
	issues = append(issues, auditTiers(s.SizeTiers)...)

	seenPackages := map[string]bool{}
	for _, pkg := range s.Packages {
		if seenPackages[pkg.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateID, Subject: "package:" + pkg.ID, Detail: "package id listed twice"})
		}
		seenPackages[pkg.ID] = true
		if pkg.BasePrice.IsNegative() {
			issues = append(issues, Issue{Kind: IssueNegativePrice, Subject: "package:" + pkg.ID, Detail: "base price is negative"})
		}
		for _, bundled := range pkg.BundledAddonIDs {
			if _, ok := s.AddOn(bundled); !ok {
				issues = append(issues, Issue{
					Kind:    IssueUnknownBundledID,
					Subject: "package:" + pkg.ID,
					Detail:  fmt.Sprintf("bundled add-on %q is not in the %s catalog", bundled, s.ServiceLine.Code),
				})
			}
		}
	}

	seenAddons := map[string]bool{}
	for _, addon := range s.AddOns {
		if seenAddons[addon.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateID, Subject: "addon:" + addon.ID, Detail: "add-on id listed twice"})
		}
		seenAddons[addon.ID] = true
		for _, price := range []*decimal.Decimal{&addon.BasePrice, addon.PriceWithPackage, addon.PriceWithoutPackage} {
			if price != nil && price.IsNegative() {
				issues = append(issues, Issue{Kind: IssueNegativePrice, Subject: "addon:" + addon.ID, Detail: "a price is negative"})
				break
			}
		}
		with, without := addon.UnitPrice(true), addon.UnitPrice(false)
		if with.GreaterThan(without) {
			issues = append(issues, Issue{
				Kind:    IssueInvertedAddonPrice,
				Subject: "addon:" + addon.ID,
				Detail:  fmt.Sprintf("price with package %s exceeds price without package %s", with, without),
			})
		}
	}

	for _, code := range s.PartnerCodes {
		for label, pct := range map[string]*decimal.Decimal{
			"package": code.PackageDiscountPercent,
			"addon":   code.AddonDiscountPercent,
		} {
			if pct != nil && (pct.IsNegative() || pct.GreaterThan(hundred)) {
				issues = append(issues, Issue{
					Kind:    IssueDiscountRange,
					Subject: "partner_code:" + code.Code,
					Detail:  fmt.Sprintf("%s discount %s%% is outside [0, 100]", label, pct),
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].Subject < issues[j].Subject
	})
	return issues
}

func auditTiers(tiers []SizeTier) []Issue {
	var issues []Issue
	sorted := make([]SizeTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinSqft < sorted[j].MinSqft })

	for i, tier := range sorted {
		subject := "tier:" + tier.Code
		if tier.Multiplier.LessThan(one) {
			issues = append(issues, Issue{Kind: IssueTierMultiplier, Subject: subject, Detail: fmt.Sprintf("multiplier %s is below 1.0", tier.Multiplier)})
		}
		if tier.MaxSqft != nil && *tier.MaxSqft < tier.MinSqft {
			issues = append(issues, Issue{Kind: IssueTierBounds, Subject: subject, Detail: "max sqft is below min sqft"})
		}
		if i+1 >= len(sorted) {
			continue
		}
		next := sorted[i+1]
		if tier.MaxSqft == nil || next.MinSqft <= *tier.MaxSqft {
			issues = append(issues, Issue{
				Kind:    IssueTierOverlap,
				Subject: subject,
				Detail:  fmt.Sprintf("bounds overlap tier %s starting at %d sqft", next.Code, next.MinSqft),
			})
		}
	}
	return issues
}
