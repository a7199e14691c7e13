package selection

import (
	"fmt"
	"strings"
	"time"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/pkg/enums"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

const invalidPartnerCodeMessage = "Invalid or expired partner code"

// Limits bounds the quantity of quantity-scaled add-ons.
type Limits struct {
	QuantityMin int
	QuantityMax int
}

// Machine applies booking flow transitions to selections of one service line.
// Every operation works on a copy: on error the caller's selection is returned
// untouched.
type Machine struct {
	snap   *catalog.Snapshot
	limits Limits
	now    func() time.Time
}

func NewMachine(snap *catalog.Snapshot, limits Limits, now func() time.Time) (*Machine, error) {
	if snap == nil {
		return nil, fmt.Errorf("catalog snapshot required")
	}
	if limits.QuantityMin < 1 || limits.QuantityMax < limits.QuantityMin {
		return nil, fmt.Errorf("invalid quantity limits %d..%d", limits.QuantityMin, limits.QuantityMax)
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{snap: snap, limits: limits, now: now}, nil
}

func (m *Machine) Snapshot() *catalog.Snapshot {
	return m.snap
}

// Steps lists the steps of this service line's flow in order.
func (m *Machine) Steps() []enums.BookingStep {
	steps := []enums.BookingStep{enums.BookingStepPackages, enums.BookingStepAddons, enums.BookingStepContact}
	if m.snap.ServiceLine.RequiresAddress {
		steps = append([]enums.BookingStep{enums.BookingStepPropertyDetails}, steps...)
	}
	return steps
}

func (m *Machine) inFlow(step enums.BookingStep) bool {
	for _, s := range m.Steps() {
		if s == step {
			return true
		}
	}
	return false
}

// SelectPackage toggles the package. Selecting a package drops any selected
// add-on it bundles in the same transition.
func (m *Machine) SelectPackage(sel *Selection, packageID string) (*Selection, error) {
	if err := m.requireStep(sel, enums.BookingStepPackages); err != nil {
		return sel, err
	}
	pkg, ok := m.snap.Package(strings.TrimSpace(packageID))
	if !ok {
		return sel, pkgerrors.FieldErrors("unknown package", map[string]string{"package_id": "package is not offered"})
	}

	next := sel.Clone()
	if next.PackageID == pkg.ID {
		next.PackageID = ""
		return next, nil
	}
	next.PackageID = pkg.ID
	for _, bundled := range pkg.BundledAddonIDs {
		next.removeAddon(bundled)
	}
	return next, nil
}

// ToggleAddon adds or removes an add-on. ref may be a plain id or a quantity
// variant id; removing a quantity-scaled add-on removes whichever variant is
// selected.
func (m *Machine) ToggleAddon(sel *Selection, ref string) (*Selection, error) {
	if err := m.requireStep(sel, enums.BookingStepAddons); err != nil {
		return sel, err
	}
	entry, addon, err := ParseAddonRef(m.snap, ref, m.limits.QuantityMin)
	if err != nil {
		return sel, pkgerrors.FieldErrors("unknown add-on", map[string]string{"addon_id": err.Error()})
	}
	if pkg, ok := m.snap.Package(sel.PackageID); ok && pkg.Bundles(addon.ID) {
		return sel, pkgerrors.FieldErrors("add-on already included", map[string]string{
			"addon_id": fmt.Sprintf("%s is included in the %s package", addon.Name, pkg.Name),
		})
	}

	next := sel.Clone()
	if next.removeAddon(addon.ID) {
		return next, nil
	}
	if addon.QuantityScaled {
		if strings.TrimSpace(ref) == addon.ID {
			entry.Quantity = m.quantityFor(next, addon.ID)
		}
		entry.Quantity = m.clamp(entry.Quantity)
		next.Quantities[addon.ID] = entry.Quantity
	}
	next.Addons = append(next.Addons, entry)
	return next, nil
}

// SetQuantity sets the quantity of a quantity-scaled add-on, clamped to the
// limits. A selected entry is re-tagged in place.
func (m *Machine) SetQuantity(sel *Selection, addonID string, quantity int) (*Selection, error) {
	if err := m.requireStep(sel, enums.BookingStepAddons); err != nil {
		return sel, err
	}
	addon, ok := m.snap.AddOn(strings.TrimSpace(addonID))
	if !ok || !addon.QuantityScaled {
		return sel, pkgerrors.FieldErrors("quantity not supported", map[string]string{
			"addon_id": fmt.Sprintf("%q does not take a quantity", addonID),
		})
	}

	next := sel.Clone()
	quantity = m.clamp(quantity)
	next.Quantities[addon.ID] = quantity
	if idx := next.addonIndex(addon.ID); idx >= 0 {
		next.Addons[idx].Quantity = quantity
	}
	return next, nil
}

// StepQuantity moves the quantity by delta, e.g. +1/-1 from a stepper.
func (m *Machine) StepQuantity(sel *Selection, addonID string, delta int) (*Selection, error) {
	return m.SetQuantity(sel, addonID, m.quantityFor(sel, strings.TrimSpace(addonID))+delta)
}

// ApplyPartnerCode looks the code up and applies it when valid. An invalid
// code records the error on the returned selection and leaves the applied
// code alone; the returned error is INVALID_PARTNER_CODE.
func (m *Machine) ApplyPartnerCode(sel *Selection, input string) (*Selection, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return sel, pkgerrors.FieldErrors("partner code required", map[string]string{"partner_code": "enter a partner code"})
	}

	next := sel.Clone()
	next.PartnerCode.Edit(input)
	rec := m.snap.PartnerCode(input)
	if !pricing.IsPartnerCodeValid(input, rec, m.now()) {
		next.PartnerCodeError = invalidPartnerCodeMessage
		return next, pkgerrors.New(pkgerrors.CodeInvalidPartnerCode, invalidPartnerCodeMessage).
			WithDetails(map[string]string{"partner_code": invalidPartnerCodeMessage})
	}
	next.PartnerCode.Applied = rec.Code
	next.PartnerCodeError = ""
	return next, nil
}

// RemovePartnerCode clears the applied code and the input.
func (m *Machine) RemovePartnerCode(sel *Selection) *Selection {
	next := sel.Clone()
	next.PartnerCode.Reset()
	next.PartnerCodeError = ""
	return next
}

// EditProperty replaces the property draft. Applied values do not move.
func (m *Machine) EditProperty(sel *Selection, draft PropertyDetails) (*Selection, error) {
	if err := m.requireAddressLine(); err != nil {
		return sel, err
	}
	next := sel.Clone()
	next.Property.Edit(draft)
	return next, nil
}

// ApplyProperty commits the property draft so pricing picks it up.
func (m *Machine) ApplyProperty(sel *Selection) (*Selection, error) {
	if err := m.requireAddressLine(); err != nil {
		return sel, err
	}
	draft := sel.Property.Draft.normalized()
	if fields := missingPropertyFields(draft); len(fields) > 0 {
		return sel, pkgerrors.FieldErrors("property details incomplete", fields)
	}
	next := sel.Clone()
	next.Property.Edit(draft)
	next.Property.Commit()
	return next, nil
}

// SetAddressMode switches between autocomplete and manual address entry.
func (m *Machine) SetAddressMode(sel *Selection, mode enums.AddressInputMode) (*Selection, error) {
	if !mode.IsValid() {
		return sel, pkgerrors.FieldErrors("invalid address mode", map[string]string{"address_mode": string(mode)})
	}
	next := sel.Clone()
	next.AddressMode = mode
	return next, nil
}

// AcceptAutocomplete writes an autocomplete result into the address draft.
// Results arriving while the listener is detached are dropped and ok is false.
func (m *Machine) AcceptAutocomplete(sel *Selection, formattedAddress string) (next *Selection, ok bool) {
	if !sel.AutocompleteAttached() || !m.snap.ServiceLine.RequiresAddress {
		return sel, false
	}
	formattedAddress = strings.TrimSpace(formattedAddress)
	if formattedAddress == "" {
		return sel, false
	}
	next = sel.Clone()
	next.Property.Draft.Address = formattedAddress
	return next, true
}

// Advance moves to the next step if the current step's exit gate holds.
// Leaving the property step commits the property draft.
func (m *Machine) Advance(sel *Selection) (*Selection, error) {
	next := sel.Clone()
	switch sel.Step {
	case enums.BookingStepPropertyDetails:
		draft := sel.Property.Draft.normalized()
		if fields := missingPropertyFields(draft); len(fields) > 0 {
			return sel, gateViolation(sel.Step, "enter the property address and size to continue", fields)
		}
		next.Property.Edit(draft)
		next.Property.Commit()
		next.Step = enums.BookingStepPackages
	case enums.BookingStepPackages:
		if !sel.HasPackage() && !m.snap.ServiceLine.AllowsAddonsOnly {
			return sel, gateViolation(sel.Step, "select a package to continue", map[string]string{"package_id": "required"})
		}
		next.Step = enums.BookingStepAddons
	case enums.BookingStepAddons:
		if !sel.CanCompleteBooking() {
			return sel, gateViolation(sel.Step, "select a package or add-on to continue", map[string]string{"selection": "required"})
		}
		next.Step = enums.BookingStepContact
	case enums.BookingStepContact:
		return sel, gateViolation(sel.Step, "already at the last step", nil)
	default:
		return sel, gateViolation(sel.Step, "unknown step", nil)
	}
	return next, nil
}

// GoTo jumps to target. Going back is always allowed; going forward advances
// through every gate in between and fails on the first one that does not hold.
func (m *Machine) GoTo(sel *Selection, target enums.BookingStep) (*Selection, error) {
	if !m.inFlow(target) {
		return sel, gateViolation(sel.Step, fmt.Sprintf("step %q is not part of this booking flow", target), nil)
	}
	if target.Index() <= sel.Step.Index() {
		next := sel.Clone()
		next.Step = target
		return next, nil
	}
	cur := sel
	for cur.Step != target {
		next, err := m.Advance(cur)
		if err != nil {
			return sel, err
		}
		cur = next
	}
	return cur, nil
}

// PurchasableAddons lists the add-ons offered next to the selected package.
func (m *Machine) PurchasableAddons(sel *Selection) []catalog.AddOn {
	return m.snap.PurchasableAddOns(sel.PackageID)
}

// Reconcile drops selections the current catalog no longer offers. It runs
// when a stored selection is paired with a fresher snapshot.
func (m *Machine) Reconcile(sel *Selection) (next *Selection, changed bool) {
	next = sel.Clone()
	pkg, hasPackage := m.snap.Package(next.PackageID)
	if next.PackageID != "" && !hasPackage {
		next.PackageID = ""
		changed = true
	}
	kept := next.Addons[:0]
	for _, entry := range next.Addons {
		addon, ok := m.snap.AddOn(entry.AddonID)
		switch {
		case !ok, hasPackage && pkg.Bundles(entry.AddonID):
			changed = true
			continue
		case addon.QuantityScaled && entry.Quantity != m.clamp(entry.Quantity):
			entry.Quantity = m.clamp(entry.Quantity)
			changed = true
		case !addon.QuantityScaled && entry.Quantity != 0:
			entry.Quantity = 0
			changed = true
		}
		kept = append(kept, entry)
	}
	next.Addons = kept
	if next.PartnerCode.Applied != "" && !pricing.IsPartnerCodeValid(next.PartnerCode.Applied, m.snap.PartnerCode(next.PartnerCode.Applied), m.now()) {
		next.PartnerCode.Applied = ""
		next.PartnerCodeError = invalidPartnerCodeMessage
		changed = true
	}
	if !m.inFlow(next.Step) {
		next.Step = m.Steps()[0]
		changed = true
	}
	return next, changed
}

func (m *Machine) requireStep(sel *Selection, min enums.BookingStep) error {
	if sel.Step.Index() < min.Index() {
		return gateViolation(sel.Step, fmt.Sprintf("complete the %s step first", sel.Step), nil)
	}
	return nil
}

func (m *Machine) requireAddressLine() error {
	if !m.snap.ServiceLine.RequiresAddress {
		return pkgerrors.FieldErrors("property details not used", map[string]string{
			"property": fmt.Sprintf("%s bookings do not take a property address", m.snap.ServiceLine.Code),
		})
	}
	return nil
}

// QuantityFor is the quantity a quantity-scaled add-on is priced at: the
// selected quantity, else the remembered one, else the configured minimum.
func (m *Machine) QuantityFor(sel *Selection, addonID string) int {
	return m.quantityFor(sel, addonID)
}

func (m *Machine) quantityFor(sel *Selection, addonID string) int {
	if idx := sel.addonIndex(addonID); idx >= 0 && sel.Addons[idx].Quantity > 0 {
		return sel.Addons[idx].Quantity
	}
	if q, ok := sel.Quantities[addonID]; ok {
		return m.clamp(q)
	}
	return m.limits.QuantityMin
}

func (m *Machine) clamp(q int) int {
	if q < m.limits.QuantityMin {
		return m.limits.QuantityMin
	}
	if q > m.limits.QuantityMax {
		return m.limits.QuantityMax
	}
	return q
}

func missingPropertyFields(p PropertyDetails) map[string]string {
	fields := map[string]string{}
	if p.Address == "" {
		fields["address"] = "required"
	}
	if p.Size == "" {
		fields["property_size"] = "required"
	}
	return fields
}

func gateViolation(step enums.BookingStep, message string, fields map[string]string) error {
	details := map[string]any{"step": step.String()}
	if len(fields) > 0 {
		details["fields"] = fields
	}
	return pkgerrors.New(pkgerrors.CodeGateViolation, message).WithDetails(details)
}
