package payment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsToDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{10000, "100.00"},
		{1990, "19.90"},
		{5, "0.05"},
		{0, "0.00"},
		{-1990, "-19.90"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CentsToDecimal(tt.cents).String())
	}
}

func TestDecimalToCents(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"100.00", 10000},
		{"19.9", 1990},
		{"250", 25000},
		{"0.05", 5},
		{"-19.90", -1990},
		{".5", 50},
	}

	for _, tt := range tests {
		got, err := DecimalToCents(json.Number(tt.raw))
		require.NoError(t, err, "amount %q", tt.raw)
		assert.Equal(t, tt.want, got, "amount %q", tt.raw)
	}
}

func TestDecimalToCentsRejectsSubCent(t *testing.T) {
	_, err := DecimalToCents(json.Number("19.999"))
	assert.Error(t, err)
}

func TestDecimalRoundTripNoDrift(t *testing.T) {
	// 19.90 is the classic float drift case (19.90*100 = 1989.9999...).
	for _, cents := range []int64{1990, 2999, 10001, 333} {
		got, err := DecimalToCents(CentsToDecimal(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got)
	}
}
