package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/snapnest/booking-backend/pkg/errors"
)

func TestPriceRoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "644", Price(dec("643.5")).String())
	assert.Equal(t, "493", Price(dec("493.35")).String())
	assert.Equal(t, "444", Price(dec("443.7")).String())
}

func TestAmountRendering(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "$556", Price(dec("556")).Display())
	assert.Equal(t, "Contact for Price", ContactForPrice().Display())
	assert.Equal(t, "Contact for Price", ContactForPrice().String())

	raw, err := json.Marshal(map[string]Amount{"a": Price(dec("48")), "b": ContactForPrice()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":48,"b":"contact_for_price"}`, string(raw))

	var decoded map[string]Amount
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded["a"].Equal(Price(dec("48"))))
	assert.True(t, decoded["b"].IsContactForPrice())

	var bad Amount
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &bad))
}

func TestAmountAddRejectsSentinel(t *testing.T) {
	t.Parallel()
	sum, err := Price(dec("10")).Add(Price(dec("5")))
	require.NoError(t, err)
	v, ok := sum.Value()
	require.True(t, ok)
	assert.Equal(t, "15", v.String())

	_, err = Price(dec("10")).Add(ContactForPrice())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePricingInconsistency))

	_, ok = ContactForPrice().Value()
	assert.False(t, ok)
}
