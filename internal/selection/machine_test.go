package selection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/pkg/enums"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func listingLine() catalog.ServiceLine {
	return catalog.ServiceLine{Code: "listing", Name: "Listing Photography", RequiresAddress: true, AllowsAddonsOnly: true}
}

func testSnapshot(line catalog.ServiceLine) *catalog.Snapshot {
	expired := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	return &catalog.Snapshot{
		ServiceLine: line,
		Packages: []catalog.Package{
			{ID: "essentials", Name: "Essentials", BasePrice: dec("229")},
			{ID: "signature", Name: "Signature", BasePrice: dec("429"), BundledAddonIDs: []string{"drone", "floor-plan"}},
		},
		AddOns: []catalog.AddOn{
			{ID: "drone", Name: "Drone Aerials", BasePrice: dec("149")},
			{ID: "floor-plan", Name: "Floor Plan", BasePrice: dec("99")},
			{ID: "twilight", Name: "Twilight", BasePrice: dec("199")},
			{ID: "virtual-staging", Name: "Virtual Staging", BasePrice: dec("12"), QuantityScaled: true},
		},
		PartnerCodes: []catalog.PartnerCode{
			{Code: "REALTY10", PackageDiscountPercent: decPtr("10")},
			{Code: "OLD5", PackageDiscountPercent: decPtr("5"), ValidUntil: &expired},
		},
		SizeTiers: []catalog.SizeTier{
			{Code: "small", Multiplier: dec("1"), MinSqft: 0, MaxSqft: intPtr(1499)},
			{Code: "medium", Multiplier: dec("1.15"), MinSqft: 1500},
		},
	}
}

func newTestMachine(t *testing.T, line catalog.ServiceLine) *Machine {
	t.Helper()
	m, err := NewMachine(testSnapshot(line), Limits{QuantityMin: 1, QuantityMax: 99}, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return m
}

// atAddons returns a listing selection past the property step.
func atAddons(t *testing.T, m *Machine) *Selection {
	t.Helper()
	sel := New(m.Snapshot().ServiceLine)
	sel, err := m.EditProperty(sel, PropertyDetails{Address: "12 Elm St", Size: "2000"})
	require.NoError(t, err)
	sel, err = m.GoTo(sel, enums.BookingStepAddons)
	require.NoError(t, err)
	return sel
}

func TestNewMachineValidatesLimits(t *testing.T) {
	_, err := NewMachine(testSnapshot(listingLine()), Limits{QuantityMin: 0, QuantityMax: 5}, nil)
	assert.Error(t, err)
	_, err = NewMachine(testSnapshot(listingLine()), Limits{QuantityMin: 3, QuantityMax: 2}, nil)
	assert.Error(t, err)
	_, err = NewMachine(nil, Limits{QuantityMin: 1, QuantityMax: 2}, nil)
	assert.Error(t, err)
}

func TestNewSelectionStartsOnFirstStep(t *testing.T) {
	assert.Equal(t, enums.BookingStepPropertyDetails, New(listingLine()).Step)
	assert.Equal(t, enums.BookingStepPackages, New(catalog.ServiceLine{Code: "branding"}).Step)
}

func TestAdvanceFromPropertyRequiresAddressAndSize(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := New(listingLine())

	for _, draft := range []PropertyDetails{{}, {Address: "12 Elm St"}, {Size: "2000"}, {Address: "  ", Size: "2000"}} {
		edited, err := m.EditProperty(sel, draft)
		require.NoError(t, err)
		next, err := m.Advance(edited)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation), "draft %+v", draft)
		assert.Same(t, edited, next)
		assert.Equal(t, enums.BookingStepPropertyDetails, next.Step)
		assert.Empty(t, next.Property.Applied)
	}
}

func TestAdvanceCommitsPropertyDraft(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel, err := m.EditProperty(New(listingLine()), PropertyDetails{Address: " 12 Elm St ", Suite: "4B", Size: "2,000 sq ft"})
	require.NoError(t, err)
	assert.Empty(t, sel.Property.Applied.Address, "typing never applies")
	assert.True(t, sel.Property.Pending())

	next, err := m.Advance(sel)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStepPackages, next.Step)
	assert.Equal(t, PropertyDetails{Address: "12 Elm St", Suite: "4B", Size: "2,000 sq ft"}, next.Property.Applied)
	assert.Equal(t, enums.BookingStepPropertyDetails, sel.Step, "input selection is not mutated")

	edited, err := m.EditProperty(next, PropertyDetails{Address: "12 Elm St", Size: "6000"})
	require.NoError(t, err)
	assert.Equal(t, "2,000 sq ft", edited.QuoteInput().PropertySize)

	applied, err := m.ApplyProperty(edited)
	require.NoError(t, err)
	assert.Equal(t, "6000", applied.QuoteInput().PropertySize)
}

func TestSelectPackageReconcilesBundledAddons(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := atAddons(t, m)

	var err error
	for _, id := range []string{"drone", "twilight", "floor-plan"} {
		sel, err = m.ToggleAddon(sel, id)
		require.NoError(t, err)
	}

	sel, err = m.SelectPackage(sel, "signature")
	require.NoError(t, err)
	assert.Equal(t, "signature", sel.PackageID)
	assert.Equal(t, []string{"twilight"}, sel.PayloadAddonIDs())

	ids := make([]string, 0)
	for _, a := range m.PurchasableAddons(sel) {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"twilight", "virtual-staging"}, ids)

	_, err = m.ToggleAddon(sel, "drone")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	deselected, err := m.SelectPackage(sel, "signature")
	require.NoError(t, err)
	assert.Empty(t, deselected.PackageID)
	assert.Equal(t, []string{"twilight"}, deselected.PayloadAddonIDs())

	again, err := m.SelectPackage(deselected, "signature")
	require.NoError(t, err)
	assert.Equal(t, sel, again)
}

func TestQuantityScaledAddon(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := atAddons(t, m)

	sel, err := m.ToggleAddon(sel, "virtual-staging")
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-1"}, sel.PayloadAddonIDs())

	sel, err = m.SetQuantity(sel, "virtual-staging", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-4"}, sel.PayloadAddonIDs())

	sel, err = m.StepQuantity(sel, "virtual-staging", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-5"}, sel.PayloadAddonIDs())
	assert.Equal(t, 5, sel.QuoteInput().Addons[0].Quantity)

	sel, err = m.SetQuantity(sel, "virtual-staging", -3)
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-1"}, sel.PayloadAddonIDs(), "clamped to the minimum")

	sel, err = m.StepQuantity(sel, "virtual-staging", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-1"}, sel.PayloadAddonIDs())

	sel, err = m.SetQuantity(sel, "virtual-staging", 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-99"}, sel.PayloadAddonIDs())

	removed, err := m.ToggleAddon(sel, "virtual-staging-99")
	require.NoError(t, err)
	assert.Empty(t, removed.Addons)

	readded, err := m.ToggleAddon(removed, "virtual-staging")
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-99"}, readded.PayloadAddonIDs(), "quantity is remembered")

	variant, err := m.ToggleAddon(removed, "virtual-staging-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual-staging-7"}, variant.PayloadAddonIDs())

	_, err = m.SetQuantity(sel, "twilight", 2)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestQuantityBeforeSelectionIsRemembered(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := atAddons(t, m)

	sel, err := m.SetQuantity(sel, "virtual-staging", 6)
	require.NoError(t, err)
	assert.Empty(t, sel.Addons)

	sel, err = m.ToggleAddon(sel, "virtual-staging")
	require.NoError(t, err)
	assert.Equal(t, []AddonEntry{{AddonID: "virtual-staging", Quantity: 6}}, sel.Addons)
}

func TestEditsAreGatedByStep(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := New(listingLine())

	_, err := m.SelectPackage(sel, "signature")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))
	_, err = m.ToggleAddon(sel, "twilight")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))
}

func TestGoTo(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := atAddons(t, m)

	_, err := m.GoTo(sel, enums.BookingStepContact)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation), "empty selection cannot reach contact")

	sel, err = m.ToggleAddon(sel, "twilight")
	require.NoError(t, err)
	contact, err := m.GoTo(sel, enums.BookingStepContact)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStepContact, contact.Step)

	back, err := m.GoTo(contact, enums.BookingStepPropertyDetails)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStepPropertyDetails, back.Step)
	assert.Equal(t, "12 Elm St", back.Property.Applied.Address)

	_, err = m.Advance(contact)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))

	_, err = m.GoTo(sel, enums.BookingStep("payment"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))
}

func TestPackagesGateWhenAddonsOnlyNotAllowed(t *testing.T) {
	line := catalog.ServiceLine{Code: "branding", Name: "Personal Branding"}
	m := newTestMachine(t, line)
	sel := New(line)

	next, err := m.Advance(sel)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))
	assert.Same(t, sel, next)

	_, err = m.GoTo(sel, enums.BookingStepPropertyDetails)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeGateViolation))

	_, err = m.EditProperty(sel, PropertyDetails{Address: "x"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	sel, err = m.SelectPackage(sel, "essentials")
	require.NoError(t, err)
	sel, err = m.GoTo(sel, enums.BookingStepContact)
	require.NoError(t, err)
	assert.True(t, sel.CanCompleteBooking())
}

func TestApplyPartnerCode(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := New(listingLine())

	sel, err := m.ApplyPartnerCode(sel, " realty10 ")
	require.NoError(t, err)
	assert.Equal(t, "REALTY10", sel.PartnerCode.Applied)
	assert.Empty(t, sel.PartnerCodeError)

	rejected, err := m.ApplyPartnerCode(sel, "OLD5")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPartnerCode))
	assert.Equal(t, "REALTY10", rejected.PartnerCode.Applied, "applied code survives a bad attempt")
	assert.Equal(t, "OLD5", rejected.PartnerCode.Draft)
	assert.NotEmpty(t, rejected.PartnerCodeError)

	_, err = m.ApplyPartnerCode(sel, "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	cleared := m.RemovePartnerCode(rejected)
	assert.Empty(t, cleared.PartnerCode.Applied)
	assert.Empty(t, cleared.PartnerCode.Draft)
	assert.Empty(t, cleared.PartnerCodeError)
	assert.Empty(t, cleared.QuoteInput().PartnerCode)
}

func TestAutocompleteRespectsManualMode(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := New(listingLine())

	sel, ok := m.AcceptAutocomplete(sel, "123 King St W, Toronto, ON")
	require.True(t, ok)
	assert.Equal(t, "123 King St W, Toronto, ON", sel.Property.Draft.Address)

	sel, err := m.SetAddressMode(sel, enums.AddressInputModeManual)
	require.NoError(t, err)
	sel, err = m.EditProperty(sel, PropertyDetails{Address: "Lot 7, Rural Route 2", Size: "1800"})
	require.NoError(t, err)

	stale, ok := m.AcceptAutocomplete(sel, "999 Elsewhere Ave")
	assert.False(t, ok)
	assert.Equal(t, "Lot 7, Rural Route 2", stale.Property.Draft.Address)

	_, err = m.SetAddressMode(sel, enums.AddressInputMode("voice"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestAutocompleteDetachesOffPropertyStep(t *testing.T) {
	m := newTestMachine(t, listingLine())
	assert.True(t, New(listingLine()).AutocompleteAttached())

	sel := atAddons(t, m)
	assert.False(t, sel.AutocompleteAttached())

	stale, ok := m.AcceptAutocomplete(sel, "999 Late Callback Ave")
	assert.False(t, ok)
	assert.Equal(t, "12 Elm St", stale.Property.Draft.Address)
	assert.Equal(t, "12 Elm St", stale.Property.Applied.Address)

	back, err := m.GoTo(sel, enums.BookingStepPropertyDetails)
	require.NoError(t, err)
	assert.True(t, back.AutocompleteAttached())

	back, ok = m.AcceptAutocomplete(back, "123 King St W, Toronto, ON")
	require.True(t, ok)
	assert.Equal(t, "123 King St W, Toronto, ON", back.Property.Draft.Address)
}

func TestQuantityForFallsBackToMinimum(t *testing.T) {
	m, err := NewMachine(testSnapshot(listingLine()), Limits{QuantityMin: 3, QuantityMax: 99}, func() time.Time { return fixedNow })
	require.NoError(t, err)
	sel := atAddons(t, m)

	assert.Equal(t, 3, m.QuantityFor(sel, "virtual-staging"))

	sel, err = m.ToggleAddon(sel, "virtual-staging")
	require.NoError(t, err)
	assert.Equal(t, 3, m.QuantityFor(sel, "virtual-staging"))

	sel, err = m.SetQuantity(sel, "virtual-staging", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, m.QuantityFor(sel, "virtual-staging"))
}

func TestReconcileAgainstNewerCatalog(t *testing.T) {
	m := newTestMachine(t, listingLine())
	sel := atAddons(t, m)
	sel.PackageID = "retired-package"
	sel.Addons = []AddonEntry{{AddonID: "twilight", Quantity: 3}, {AddonID: "hovercraft"}, {AddonID: "virtual-staging", Quantity: 400}}
	sel.PartnerCode.Applied = "OLD5"

	next, changed := m.Reconcile(sel)
	assert.True(t, changed)
	assert.Empty(t, next.PackageID)
	assert.Equal(t, []string{"twilight", "virtual-staging-99"}, next.PayloadAddonIDs())
	assert.Empty(t, next.PartnerCode.Applied)
	assert.NotEmpty(t, next.PartnerCodeError)
	assert.Len(t, sel.Addons, 3, "input selection is not mutated")

	_, changed = m.Reconcile(next)
	assert.False(t, changed)
}

func TestParseAddonRef(t *testing.T) {
	snap := testSnapshot(listingLine())

	entry, addon, err := ParseAddonRef(snap, "virtual-staging-12", 1)
	require.NoError(t, err)
	assert.Equal(t, AddonEntry{AddonID: "virtual-staging", Quantity: 12}, entry)
	assert.True(t, addon.QuantityScaled)

	entry, _, err = ParseAddonRef(snap, "floor-plan", 1)
	require.NoError(t, err)
	assert.Equal(t, AddonEntry{AddonID: "floor-plan"}, entry)

	_, _, err = ParseAddonRef(snap, "twilight-2", 1)
	assert.Error(t, err, "flat add-ons have no variants")
	_, _, err = ParseAddonRef(snap, "virtual-staging-0", 1)
	assert.Error(t, err)
}

func TestStaged(t *testing.T) {
	var s Staged[string]
	s.Edit("abc")
	assert.True(t, s.Pending())
	assert.Empty(t, s.Applied)
	s.Commit()
	assert.Equal(t, "abc", s.Applied)
	assert.False(t, s.Pending())
	s.Reset()
	assert.Equal(t, Staged[string]{}, s)
}
