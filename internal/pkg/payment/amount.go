package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Gateways like Asaas speak decimal currency amounts on the wire. These
// helpers convert between that representation and integer cents using
// string arithmetic only; a float64 round trip would drift on values like
// 19.90.

// CentsToDecimal renders integer cents as a two-decimal wire amount.
func CentsToDecimal(cents int64) json.Number {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return json.Number(fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100))
}

// DecimalToCents parses a wire amount ("100.00", "19.9", "250") into
// integer cents. Fractions beyond two digits are rejected.
func DecimalToCents(raw json.Number) (int64, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has sub-cent precision", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	fracCents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	cents := wholeUnits*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, nil
}
