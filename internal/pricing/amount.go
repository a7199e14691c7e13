package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

const (
	contactForPriceToken   = "contact_for_price"
	contactForPriceDisplay = "Contact for Price"
)

// Amount is a whole-dollar price or the contact-for-price sentinel. The zero
// value is a numeric zero.
type Amount struct {
	value   decimal.Decimal
	contact bool
}

// Price wraps a numeric price, rounding to whole units half away from zero.
func Price(v decimal.Decimal) Amount {
	return Amount{value: v.Round(0)}
}

// ContactForPrice returns the sentinel.
func ContactForPrice() Amount {
	return Amount{contact: true}
}

func (a Amount) IsContactForPrice() bool {
	return a.contact
}

// Value returns the numeric price. ok is false for the sentinel.
func (a Amount) Value() (decimal.Decimal, bool) {
	if a.contact {
		return decimal.Zero, false
	}
	return a.value, true
}

// Add sums two numeric amounts. Summing through the sentinel is a programming
// error and reported as PRICING_INCONSISTENCY.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.contact || b.contact {
		return Amount{}, pkgerrors.New(pkgerrors.CodePricingInconsistency, "cannot sum through a contact-for-price amount")
	}
	return Amount{value: a.value.Add(b.value)}, nil
}

// Display renders the price for people: "$556" or "Contact for Price".
func (a Amount) Display() string {
	if a.contact {
		return contactForPriceDisplay
	}
	return "$" + a.value.StringFixed(0)
}

// String renders the price for the submission payload: "556" or "Contact for Price".
func (a Amount) String() string {
	if a.contact {
		return contactForPriceDisplay
	}
	return a.value.StringFixed(0)
}

func (a Amount) Equal(b Amount) bool {
	if a.contact || b.contact {
		return a.contact == b.contact
	}
	return a.value.Equal(b.value)
}

// MarshalJSON renders a bare integer, or "contact_for_price" for the sentinel.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.contact {
		return json.Marshal(contactForPriceToken)
	}
	return []byte(a.value.StringFixed(0)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"`+contactForPriceToken+`"`)) {
		*a = ContactForPrice()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = Price(d)
	return nil
}
