package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, 8, 15, 9, 5, 30, 0, time.UTC)
	got := FormatDateTime(ts)
	assert.Equal(t, "20260815090530", got)
	assert.Len(t, got, DateTimeLength)
}

func TestFixedDigits(t *testing.T) {
	assert.True(t, FixedDigits("123456", TraceNoLength))
	assert.False(t, FixedDigits("12345", TraceNoLength))
	assert.False(t, FixedDigits("12345a", TraceNoLength))
	assert.False(t, FixedDigits("1234567", TraceNoLength))
}

func TestFixedWidth(t *testing.T) {
	assert.True(t, FixedWidth("0088", MerchantTypeLength))
	assert.False(t, FixedWidth("88", MerchantTypeLength))
}
