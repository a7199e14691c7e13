package enums

import "fmt"

// BookingRequestStatus tracks a stored booking lead.
type BookingRequestStatus string

const (
	BookingRequestStatusReceived  BookingRequestStatus = "received"
	BookingRequestStatusContacted BookingRequestStatus = "contacted"
	BookingRequestStatusClosed    BookingRequestStatus = "closed"
)

var validBookingRequestStatuses = []BookingRequestStatus{
	BookingRequestStatusReceived,
	BookingRequestStatusContacted,
	BookingRequestStatusClosed,
}

// String implements fmt.Stringer.
func (s BookingRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingRequestStatus.
func (s BookingRequestStatus) IsValid() bool {
	for _, candidate := range validBookingRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingRequestStatus converts raw input into a BookingRequestStatus.
func ParseBookingRequestStatus(value string) (BookingRequestStatus, error) {
	for _, candidate := range validBookingRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking request status %q", value)
}
