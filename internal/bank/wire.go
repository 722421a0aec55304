// Package bank defines the wire contract of the external bank API: the
// fixed-width request fields, the bank-specific headers, and helpers for
// producing conforming values. The formats here are dictated by the bank;
// this service conforms to them, it does not design them.
package bank

import "time"

// Bank-specific request headers. clientSecret carries the bearer token value,
// not the OAuth client secret; the name is the bank's, kept verbatim.
const (
	HeaderClientID       = "clientId"
	HeaderClientSecret   = "clientSecret"
	HeaderOrganizationID = "organizationId"
)

// Fixed field widths, all JSON string values.
const (
	CNICLength            = 13
	MobileLength          = 11
	MerchantTypeLength    = 4
	TraceNoLength         = 6
	DateTimeLength        = 14
	CompanyNameLength     = 4
	TransactionTypeLength = 2
	ReservedLength        = 2
)

// AccountRequest is the shared request envelope for the account verification
// and account linking endpoints.
type AccountRequest struct {
	CNIC            string `json:"cnic"`
	MobileNo        string `json:"mobile_no"`
	MerchantType    string `json:"merchant_type"`
	TraceNo         string `json:"trace_no"`
	DateTime        string `json:"date_time"`
	CompanyName     string `json:"company_name"`
	TransactionType string `json:"transaction_type"`
	Reserved1       string `json:"reserved1"`
	Reserved2       string `json:"reserved2"`
}

// FormatDateTime renders t in the bank's 14-character YYYYMMDDHHmmss form.
func FormatDateTime(t time.Time) string {
	return t.Format("20060102150405")
}

// FixedWidth reports whether s is exactly width characters.
func FixedWidth(s string, width int) bool {
	return len(s) == width
}

// FixedDigits reports whether s is exactly width ASCII digits.
func FixedDigits(s string, width int) bool {
	if len(s) != width {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
