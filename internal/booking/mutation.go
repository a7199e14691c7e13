package booking

import (
	"fmt"

	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/enums"
	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

type MutationKind string

const (
	MutationSelectPackage      MutationKind = "select_package"
	MutationToggleAddon        MutationKind = "toggle_addon"
	MutationSetQuantity        MutationKind = "set_quantity"
	MutationStepQuantity       MutationKind = "step_quantity"
	MutationApplyPartnerCode   MutationKind = "apply_partner_code"
	MutationRemovePartnerCode  MutationKind = "remove_partner_code"
	MutationEditProperty       MutationKind = "edit_property"
	MutationApplyProperty      MutationKind = "apply_property"
	MutationSetAddressMode     MutationKind = "set_address_mode"
	MutationAcceptAutocomplete MutationKind = "accept_autocomplete"
	MutationAdvance            MutationKind = "advance"
	MutationGoTo               MutationKind = "go_to"
)

// Mutation is one user action against a booking session. Only the fields the
// kind needs are read.
type Mutation struct {
	Kind        MutationKind               `json:"kind" validate:"required"`
	PackageID   string                     `json:"package_id,omitempty"`
	AddonID     string                     `json:"addon_id,omitempty"`
	Quantity    int                        `json:"quantity,omitempty"`
	Delta       int                        `json:"delta,omitempty"`
	PartnerCode string                     `json:"partner_code,omitempty"`
	Property    *selection.PropertyDetails `json:"property,omitempty"`
	AddressMode enums.AddressInputMode     `json:"address_mode,omitempty"`
	Address     string                     `json:"address,omitempty"`
	Step        enums.BookingStep          `json:"step,omitempty"`
}

// apply runs m through the machine. Invalid partner codes are not errors here:
// the returned selection records them.
func (m Mutation) apply(machine *selection.Machine, sel *selection.Selection) (*selection.Selection, error) {
	switch m.Kind {
	case MutationSelectPackage:
		return machine.SelectPackage(sel, m.PackageID)
	case MutationToggleAddon:
		return machine.ToggleAddon(sel, m.AddonID)
	case MutationSetQuantity:
		return machine.SetQuantity(sel, m.AddonID, m.Quantity)
	case MutationStepQuantity:
		return machine.StepQuantity(sel, m.AddonID, m.Delta)
	case MutationApplyPartnerCode:
		next, err := machine.ApplyPartnerCode(sel, m.PartnerCode)
		if pkgerrors.HasCode(err, pkgerrors.CodeInvalidPartnerCode) {
			return next, nil
		}
		return next, err
	case MutationRemovePartnerCode:
		return machine.RemovePartnerCode(sel), nil
	case MutationEditProperty:
		if m.Property == nil {
			return sel, pkgerrors.FieldErrors("property required", map[string]string{"property": "is required"})
		}
		return machine.EditProperty(sel, *m.Property)
	case MutationApplyProperty:
		return machine.ApplyProperty(sel)
	case MutationSetAddressMode:
		return machine.SetAddressMode(sel, m.AddressMode)
	case MutationAcceptAutocomplete:
		next, _ := machine.AcceptAutocomplete(sel, m.Address)
		return next, nil
	case MutationAdvance:
		return machine.Advance(sel)
	case MutationGoTo:
		return machine.GoTo(sel, m.Step)
	default:
		return sel, pkgerrors.FieldErrors("unknown mutation", map[string]string{"kind": fmt.Sprintf("%q is not supported", m.Kind)})
	}
}
