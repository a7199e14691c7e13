package selection

import (
	"fmt"
	"strings"

	"github.com/snapnest/booking-backend/internal/catalog"
	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/pkg/enums"
)

// PropertyDetails is the property block of the property step.
type PropertyDetails struct {
	Address string `json:"address"`
	Suite   string `json:"suite"`
	Size    string `json:"size"`
}

func (p PropertyDetails) normalized() PropertyDetails {
	return PropertyDetails{
		Address: strings.TrimSpace(p.Address),
		Suite:   strings.TrimSpace(p.Suite),
		Size:    strings.TrimSpace(p.Size),
	}
}

// AddonEntry is one selected add-on. Quantity is set only for quantity-scaled
// add-ons; the quantity suffix exists only in PayloadID.
type AddonEntry struct {
	AddonID  string `json:"addon_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// PayloadID is the id sent with a submission, e.g. "virtual-staging-4".
func (e AddonEntry) PayloadID() string {
	if e.Quantity > 0 {
		return catalog.VariantID(e.AddonID, e.Quantity)
	}
	return e.AddonID
}

// Selection is the in-progress state of one booking session. Quantities
// remembers the chosen quantity per quantity-scaled add-on, including families
// that are not currently selected.
type Selection struct {
	ServiceLine      string                  `json:"service_line"`
	Step             enums.BookingStep       `json:"step"`
	PackageID        string                  `json:"package_id,omitempty"`
	Addons           []AddonEntry            `json:"addons"`
	Quantities       map[string]int          `json:"quantities,omitempty"`
	Property         Staged[PropertyDetails] `json:"property"`
	AddressMode      enums.AddressInputMode  `json:"address_mode"`
	PartnerCode      Staged[string]          `json:"partner_code"`
	PartnerCodeError string                  `json:"partner_code_error,omitempty"`
}

// AutocompleteAttached reports whether address autocomplete results are
// accepted: only on the property step and only in autocomplete mode.
func (s *Selection) AutocompleteAttached() bool {
	return s != nil &&
		s.Step == enums.BookingStepPropertyDetails &&
		s.AddressMode == enums.AddressInputModeAutocomplete
}

// New starts an empty selection on the first step of line's flow.
func New(line catalog.ServiceLine) *Selection {
	step := enums.BookingStepPackages
	if line.RequiresAddress {
		step = enums.BookingStepPropertyDetails
	}
	return &Selection{
		ServiceLine: line.Code,
		Step:        step,
		Addons:      []AddonEntry{},
		Quantities:  map[string]int{},
		AddressMode: enums.AddressInputModeAutocomplete,
	}
}

// Clone returns a deep copy. Machine operations run against a clone so a
// rejected transition never leaves a half-applied selection.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	out := *s
	out.Addons = append([]AddonEntry{}, s.Addons...)
	out.Quantities = make(map[string]int, len(s.Quantities))
	for k, v := range s.Quantities {
		out.Quantities[k] = v
	}
	return &out
}

func (s *Selection) HasPackage() bool {
	return s.PackageID != ""
}

// HasAddon reports whether any entry of the add-on family is selected.
func (s *Selection) HasAddon(addonID string) bool {
	return s.addonIndex(addonID) >= 0
}

func (s *Selection) addonIndex(addonID string) int {
	for i, entry := range s.Addons {
		if entry.AddonID == addonID {
			return i
		}
	}
	return -1
}

func (s *Selection) removeAddon(addonID string) bool {
	idx := s.addonIndex(addonID)
	if idx < 0 {
		return false
	}
	s.Addons = append(s.Addons[:idx], s.Addons[idx+1:]...)
	return true
}

// CanCompleteBooking is the contact step gate.
func (s *Selection) CanCompleteBooking() bool {
	return s.HasPackage() || len(s.Addons) > 0
}

// PayloadAddonIDs lists the submission ids of the selected add-ons in order.
func (s *Selection) PayloadAddonIDs() []string {
	ids := make([]string, 0, len(s.Addons))
	for _, entry := range s.Addons {
		ids = append(ids, entry.PayloadID())
	}
	return ids
}

// QuoteInput prices the applied state. Drafts never reach pricing.
func (s *Selection) QuoteInput() pricing.QuoteInput {
	addons := make([]pricing.AddonInput, 0, len(s.Addons))
	for _, entry := range s.Addons {
		addons = append(addons, pricing.AddonInput{AddonID: entry.AddonID, Quantity: entry.Quantity})
	}
	return pricing.QuoteInput{
		PackageID:    s.PackageID,
		Addons:       addons,
		PropertySize: s.Property.Applied.Size,
		PartnerCode:  s.PartnerCode.Applied,
	}
}

// ParseAddonRef resolves a submission-style id against the catalog. A plain id
// of a quantity-scaled add-on gets quantity min.
func ParseAddonRef(snap *catalog.Snapshot, ref string, min int) (AddonEntry, catalog.AddOn, error) {
	ref = strings.TrimSpace(ref)
	if addon, ok := snap.AddOn(ref); ok {
		entry := AddonEntry{AddonID: addon.ID}
		if addon.QuantityScaled {
			entry.Quantity = min
		}
		return entry, addon, nil
	}
	if id, n, ok := catalog.SplitVariantID(ref); ok {
		if addon, found := snap.AddOn(id); found && addon.QuantityScaled {
			return AddonEntry{AddonID: addon.ID, Quantity: n}, addon, nil
		}
	}
	return AddonEntry{}, catalog.AddOn{}, fmt.Errorf("unknown add-on %q", ref)
}
