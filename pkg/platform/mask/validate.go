package mask

import "strings"

// stripSeparators removes the given separator characters from s.
func stripSeparators(s string, seps string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(seps, r) {
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidCNIC reports whether s is a 13-digit CNIC, tolerating dash and space
// separators.
func ValidCNIC(s string) bool {
	stripped := stripSeparators(s, "- ")
	return len(stripped) == 13 && allDigits(stripped)
}

// ValidMobile reports whether s is an 11-digit Pakistani mobile number in
// local form: "03" followed by nine digits. Space, dash, and plus separators
// are tolerated.
func ValidMobile(s string) bool {
	stripped := stripSeparators(s, " -+")
	return len(stripped) == 11 && allDigits(stripped) && strings.HasPrefix(stripped, "03")
}

// FormatCNIC re-inserts dashes in 5-7-1 digit groups. Input whose stripped
// length is not 13 is returned unchanged.
func FormatCNIC(s string) string {
	stripped := stripSeparators(s, "- ")
	if len(stripped) != 13 || !allDigits(stripped) {
		return s
	}
	return stripped[:5] + "-" + stripped[5:12] + "-" + stripped[12:]
}

// FormatMobile converts a 10-digit "0XXXXXXXXX" number to international
// "+92XXXXXXXXX" form; any other input is returned unchanged.
//
// Note the contract here expects 10 digits while ValidMobile and the bank wire
// format require 11. The disagreement is inherited from the upstream system
// and deliberately not reconciled; callers pick the behavior their call site
// needs.
func FormatMobile(s string) string {
	stripped := stripSeparators(s, " -+")
	if len(stripped) != 10 || !allDigits(stripped) || !strings.HasPrefix(stripped, "0") {
		return s
	}
	return "+92" + stripped[1:]
}
