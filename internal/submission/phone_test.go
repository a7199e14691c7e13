package submission

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"4165550123":       "(416) 555-0123",
		"416-555-0123":     "(416) 555-0123",
		"(416) 555 0123":   "(416) 555-0123",
		"+1 416.555.0123":  "(416) 555-0123",
		"1 (416) 555-0123": "(416) 555-0123",
	}
	for raw, want := range valid {
		got, err := NormalizePhone(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"555-0123", "2 416 555 0123", "416555012345", "call me"} {
		_, err := NormalizePhone(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizePhoneIgnoresNonASCIIDigits(t *testing.T) {
	for _, raw := range []string{"٠١٢٣٤", "٠١٢٣٤٥٦٧٨٩", "４１６５５５０１２３", "416٥555٥012"} {
		got, err := NormalizePhone(raw)
		assert.Error(t, err, raw)
		assert.Empty(t, got, raw)
	}

	got, err := NormalizePhone("416 ٠ 555 ٠ 0123")
	require.NoError(t, err)
	assert.Equal(t, "(416) 555-0123", got)
	assert.True(t, utf8.ValidString(got))
}
