package enums

import "fmt"

// AddressInputMode tracks how the property address is being entered.
type AddressInputMode string

const (
	AddressInputModeAutocomplete AddressInputMode = "autocomplete"
	AddressInputModeManual       AddressInputMode = "manual"
)

var validAddressInputModes = []AddressInputMode{
	AddressInputModeAutocomplete,
	AddressInputModeManual,
}

// String implements fmt.Stringer.
func (m AddressInputMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known AddressInputMode.
func (m AddressInputMode) IsValid() bool {
	for _, candidate := range validAddressInputModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAddressInputMode converts raw input into an AddressInputMode.
func ParseAddressInputMode(value string) (AddressInputMode, error) {
	for _, candidate := range validAddressInputModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid address input mode %q", value)
}
