package security

import (
	"strings"
	"testing"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "4111111111111111", want: "************1111"},
		{in: "4111 1111 1111 1111", want: "************1111"},
		{in: "4111-1111-1111-1111", want: "************1111"},
		{in: "123", want: "****"},
	}

	for _, tt := range tests {
		if got := MaskCardNumber(tt.in); got != tt.want {
			t.Fatalf("MaskCardNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskDocument(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "12345678901", want: "123******01"},
		{in: "123.456.789-01", want: "123******01"},
		{in: "12345", want: "*****"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := MaskDocument(tt.in); got != tt.want {
			t.Fatalf("MaskDocument(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeForLog(t *testing.T) {
	data := map[string]interface{}{
		"cardNumber": "4111111111111111",
		"cpfCnpj":    "12345678901",
		"name":       "Maria Silva",
		"card": map[string]interface{}{
			"cvv":    "123",
			"holder": "MARIA SILVA",
		},
	}

	sanitized := SanitizeForLog(data)

	if sanitized["cardNumber"] != "[REDACTED]" {
		t.Fatalf("expected cardNumber redacted, got %v", sanitized["cardNumber"])
	}
	if sanitized["cpfCnpj"] != "123******01" {
		t.Fatalf("expected cpfCnpj masked, got %v", sanitized["cpfCnpj"])
	}
	if sanitized["name"] != "Maria Silva" {
		t.Fatalf("expected name untouched, got %v", sanitized["name"])
	}

	nested := sanitized["card"].(map[string]interface{})
	if nested["cvv"] != "[REDACTED]" {
		t.Fatalf("expected nested cvv redacted, got %v", nested["cvv"])
	}
	if nested["holder"] != "MARIA SILVA" {
		t.Fatalf("expected nested holder untouched, got %v", nested["holder"])
	}

	// Original must not be mutated.
	if data["cardNumber"] != "4111111111111111" {
		t.Fatalf("SanitizeForLog mutated its input")
	}
}

func TestSanitizeForLogNeverLeaksFullDocument(t *testing.T) {
	doc := "98765432100"
	sanitized := SanitizeForLog(map[string]interface{}{"document": doc})
	if strings.Contains(sanitized["document"].(string), doc) {
		t.Fatalf("full document leaked: %v", sanitized["document"])
	}
}
