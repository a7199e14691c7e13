package notifications

import (
	"encoding/json"
	"time"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/snapnest/booking-backend/internal/submission"
)

const (
	EventTypeBookingSubmitted = "booking_request.submitted"
	eventVersion              = "1"
)

// Envelope is the Pub/Sub message published for every stored booking. The
// email worker subscribes to it.
type Envelope struct {
	EventID     string             `json:"event_id"`
	EventType   string             `json:"event_type"`
	ServiceLine string             `json:"service_line"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Payload     submission.Payload `json:"payload"`
}

func newEnvelope(p submission.Payload) Envelope {
	return Envelope{
		EventID:     p.ID.String(),
		EventType:   EventTypeBookingSubmitted,
		ServiceLine: p.ServiceLine,
		OccurredAt:  p.SubmittedAt,
		Payload:     p,
	}
}

func (e Envelope) attributes() map[string]string {
	return map[string]string{
		"event_type":    e.EventType,
		"event_version": eventVersion,
		"service_line":  e.ServiceLine,
	}
}

// BookingRow mirrors the booking_requests BigQuery table. Contact details stay
// out of analytics.
type BookingRow struct {
	BookingID       string             `bigquery:"booking_id"`
	ServiceLine     string             `bigquery:"service_line"`
	SubmittedAt     time.Time          `bigquery:"submitted_at"`
	PackageID       *string            `bigquery:"package_id"`
	AddonIDs        []string           `bigquery:"addon_ids"`
	PartnerCode     *string            `bigquery:"partner_code"`
	PropertySize    *string            `bigquery:"property_size"`
	SizeTier        *string            `bigquery:"size_tier"`
	ContactForPrice bool               `bigquery:"contact_for_price"`
	TotalPrice      *int64             `bigquery:"total_price"`
	Quote           cbigquery.NullJSON `bigquery:"quote"`
}

// InsertID lets BigQuery drop a row that a retry already delivered.
func (r *BookingRow) InsertID() string {
	return r.BookingID
}

func newBookingRow(p submission.Payload) (BookingRow, error) {
	row := BookingRow{
		BookingID:       p.ID.String(),
		ServiceLine:     p.ServiceLine,
		SubmittedAt:     p.SubmittedAt,
		PackageID:       optional(p.PackageID),
		AddonIDs:        p.AddonIDs,
		PartnerCode:     optional(p.PartnerCode),
		PropertySize:    optional(p.PropertySize),
		ContactForPrice: p.ContactForPrice,
	}
	if p.Quote != nil {
		row.SizeTier = optional(p.Quote.SizeTier)
		if v, ok := p.Quote.Total.Value(); ok {
			total := v.IntPart()
			row.TotalPrice = &total
		}
		raw, err := json.Marshal(p.Quote)
		if err != nil {
			return BookingRow{}, err
		}
		row.Quote = cbigquery.NullJSON{Valid: true, JSONVal: string(raw)}
	}
	return row, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
