package security

import (
	"fmt"
	"strings"
)

// Field names that must never reach the transaction log in clear text.
var sensitiveFields = map[string]struct{}{
	"cardNumber":    {},
	"card_number":   {},
	"cvv":           {},
	"cvc":           {},
	"securityCode":  {},
	"security_code": {},
	"password":      {},
	"secret":        {},
	"token":         {},
	"access_token":  {},
	"apiKey":        {},
	"api_key":       {},
}

var documentFields = map[string]struct{}{
	"cpfCnpj":  {},
	"cpf_cnpj": {},
	"document": {},
}

// MaskCardNumber keeps only the last 4 digits visible.
// "4111111111111111" -> "************1111"
func MaskCardNumber(cardNumber string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, cardNumber)
	if len(cleaned) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(cleaned)-4) + cleaned[len(cleaned)-4:]
}

// MaskDocument shows only the first 3 and last 2 digits of a CPF/CNPJ.
// "12345678901" -> "123******01"
func MaskDocument(document string) string {
	var b strings.Builder
	for _, r := range document {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) <= 5 {
		return strings.Repeat("*", len(cleaned))
	}
	return cleaned[:3] + strings.Repeat("*", len(cleaned)-5) + cleaned[len(cleaned)-2:]
}

// SanitizeForLog returns a copy of data with sensitive fields redacted and
// document numbers masked. Nested maps are sanitized recursively.
func SanitizeForLog(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(data))
	for key, value := range data {
		if _, ok := sensitiveFields[key]; ok {
			sanitized[key] = "[REDACTED]"
			continue
		}
		if _, ok := documentFields[key]; ok {
			sanitized[key] = MaskDocument(fmt.Sprintf("%v", value))
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			sanitized[key] = SanitizeForLog(nested)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
