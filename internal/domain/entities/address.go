package entities

import "strings"

// IsValidAddress reports whether s is a well-formed account address:
// 64 hex characters, with or without a 0x prefix, case-insensitive.
func IsValidAddress(s string) bool {
	clean := strings.TrimPrefix(s, "0x")
	if len(clean) != 64 {
		return false
	}
	for _, c := range clean {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress lowercases an address and ensures the 0x prefix.
// Addresses are normalized on every read and write so lookups are
// case-insensitive.
func NormalizeAddress(s string) string {
	if s == "" {
		return ""
	}
	return "0x" + strings.ToLower(strings.TrimPrefix(s, "0x"))
}
