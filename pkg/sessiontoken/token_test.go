package sessiontoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapnest/booking-backend/pkg/config"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{Secret: "secret", Issuer: "booking-api", TTL: time.Hour}
}

func TestMintAndParse(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()

	token, err := Mint(cfg, now, "sess-1", "listing")
	require.NoError(t, err)

	claims, err := Parse(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "listing", claims.ServiceLine)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now().Add(-2*time.Hour), "sess-1", "listing")
	require.NoError(t, err)

	_, err = Parse(cfg, token)
	require.Error(t, err)
}

func TestParseRejectsWrongSecretOrIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), "sess-1", "listing")
	require.NoError(t, err)

	other := cfg
	other.Secret = "other"
	_, err = Parse(other, token)
	require.Error(t, err)

	other = cfg
	other.Issuer = "someone-else"
	_, err = Parse(other, token)
	require.Error(t, err)
}

func TestMintValidatesInput(t *testing.T) {
	cfg := testConfig()
	_, err := Mint(cfg, time.Now(), " ", "listing")
	require.Error(t, err)
	_, err = Mint(cfg, time.Now(), "sess", "")
	require.Error(t, err)

	cfg.TTL = 0
	_, err = Mint(cfg, time.Now(), "sess", "listing")
	require.Error(t, err)
}
