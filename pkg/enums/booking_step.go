package enums

import "fmt"

// BookingStep is one wizard step of the booking flow, in flow order.
type BookingStep string

const (
	BookingStepPropertyDetails BookingStep = "property_details"
	BookingStepPackages        BookingStep = "packages"
	BookingStepAddons          BookingStep = "addons"
	BookingStepContact         BookingStep = "contact"
)

var orderedBookingSteps = []BookingStep{
	BookingStepPropertyDetails,
	BookingStepPackages,
	BookingStepAddons,
	BookingStepContact,
}

// String implements fmt.Stringer.
func (s BookingStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStep.
func (s BookingStep) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position of the step in the flow, or -1 when unknown.
func (s BookingStep) Index() int {
	for i, candidate := range orderedBookingSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the step following s. ok is false for the last step.
func (s BookingStep) Next() (BookingStep, bool) {
	idx := s.Index()
	if idx < 0 || idx+1 >= len(orderedBookingSteps) {
		return "", false
	}
	return orderedBookingSteps[idx+1], true
}

// ParseBookingStep converts raw input into a BookingStep.
func ParseBookingStep(value string) (BookingStep, error) {
	for _, candidate := range orderedBookingSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking step %q", value)
}
