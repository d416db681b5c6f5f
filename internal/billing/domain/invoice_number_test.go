package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumber_Format(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 45, 123_000_000, time.UTC)

	assert.Equal(t, "INV20260315143045123", InvoiceNumber("INV", now))
}

func TestInvoiceNumber_EmptyPrefix(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "20260102030405000", InvoiceNumber("", now))
}

func TestInvoiceNumber_NormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2026, 3, 15, 20, 0, 45, 0, ist)

	assert.Equal(t, "GLM20260315143045000", InvoiceNumber("GLM", local))
}
