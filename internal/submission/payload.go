package submission

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snapnest/booking-backend/internal/pricing"
	"github.com/snapnest/booking-backend/internal/selection"
	"github.com/snapnest/booking-backend/pkg/db/models"
	"github.com/snapnest/booking-backend/pkg/enums"
)

// Payload is the finalized booking handed to storage and notifications.
// AddonIDs are submission ids with quantity suffixes resolved.
type Payload struct {
	ID              uuid.UUID      `json:"id"`
	SessionID       string         `json:"session_id"`
	ServiceLine     string         `json:"service_line"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	Address         string         `json:"address,omitempty"`
	Suite           string         `json:"suite,omitempty"`
	PropertySize    string         `json:"property_size,omitempty"`
	PackageID       string         `json:"package_id,omitempty"`
	AddonIDs        []string       `json:"addon_ids"`
	PartnerCode     string         `json:"partner_code,omitempty"`
	PreferredDate   string         `json:"preferred_date,omitempty"`
	PreferredTime   string         `json:"preferred_time,omitempty"`
	Message         string         `json:"message,omitempty"`
	TotalPrice      string         `json:"total_price"`
	ContactForPrice bool           `json:"contact_for_price"`
	Quote           *pricing.Quote `json:"quote"`
	SubmittedAt     time.Time      `json:"submitted_at"`
}

// BuildPayload combines a validated request with the applied selection and the
// quote recomputed at submission time.
func BuildPayload(sessionID string, sel *selection.Selection, req Request, quote *pricing.Quote, now time.Time) Payload {
	return Payload{
		ID:              uuid.New(),
		SessionID:       sessionID,
		ServiceLine:     sel.ServiceLine,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         sel.Property.Applied.Address,
		Suite:           sel.Property.Applied.Suite,
		PropertySize:    sel.Property.Applied.Size,
		PackageID:       quote.PackageID,
		AddonIDs:        quote.AddonIDs(),
		PartnerCode:     quote.PartnerCode,
		PreferredDate:   req.PreferredDate,
		PreferredTime:   req.PreferredTime,
		Message:         req.Message,
		TotalPrice:      quote.Total.String(),
		ContactForPrice: quote.ContactForPrice,
		Quote:           quote,
		SubmittedAt:     now.UTC(),
	}
}

// quoteRecord is the stored quote. It keeps the numeric package price that the
// public quote hides behind the contact-for-price sentinel.
type quoteRecord struct {
	*pricing.Quote
	ComputedPackagePrice *string `json:"computed_package_price,omitempty"`
}

// ToModel maps the payload onto a booking_requests row.
func (p Payload) ToModel() (*models.BookingRequest, error) {
	record := quoteRecord{Quote: p.Quote}
	if p.Quote != nil && p.Quote.ComputedPackagePrice != nil {
		v := p.Quote.ComputedPackagePrice.StringFixed(0)
		record.ComputedPackagePrice = &v
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return &models.BookingRequest{
		ID:              p.ID,
		SessionID:       p.SessionID,
		ServiceLine:     p.ServiceLine,
		Status:          enums.BookingRequestStatusReceived,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           optional(p.Phone),
		Address:         optional(p.Address),
		Suite:           optional(p.Suite),
		PropertySize:    optional(p.PropertySize),
		PackageID:       optional(p.PackageID),
		AddonIDs:        p.AddonIDs,
		PartnerCode:     optional(p.PartnerCode),
		PreferredDate:   optional(p.PreferredDate),
		PreferredTime:   optional(p.PreferredTime),
		Message:         optional(p.Message),
		TotalPrice:      p.TotalPrice,
		ContactForPrice: p.ContactForPrice,
		Quote:           raw,
		CreatedAt:       p.SubmittedAt,
	}, nil
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
