package parser

import "strings"

// Normalize maps a raw cell value to its canonical nullable form: nil when
// the source is empty or whitespace-only, otherwise the trimmed string.
// Integral numeric values carrying a redundant ".0" fraction are reduced to
// their integer form so formatted and raw sources serialize identically.
// Normalize is idempotent.
func Normalize(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	trimmed = trimIntegralFraction(trimmed)
	return &trimmed
}

// trimIntegralFraction turns "2020.0" into "2020" while leaving "100.5",
// "2020", and non-numeric values untouched.
func trimIntegralFraction(s string) string {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return s
	}
	intPart := s[:dot]
	if intPart[0] == '-' || intPart[0] == '+' {
		intPart = intPart[1:]
	}
	if intPart == "" || !allDigits(intPart) {
		return s
	}
	for i := dot + 1; i < len(s); i++ {
		if s[i] != '0' {
			return s
		}
	}
	return s[:dot]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
