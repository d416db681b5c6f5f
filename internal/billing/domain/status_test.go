package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolvePaymentStatus(t *testing.T) {
	tests := []struct {
		name       string
		grand      string
		paid       string
		wantStatus BillStatus
		wantDues   string
	}{
		{"fully paid", "1000", "1000", BillStatusPaid, "0"},
		{"overpaid still paid", "1000", "1200", BillStatusPaid, "0"},
		{"partial", "1000", "400", BillStatusPartial, "600"},
		{"unpaid", "1000", "0", BillStatusUnpaid, "1000"},
		{"zero bill zero paid", "0", "0", BillStatusPaid, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, dues := ResolvePaymentStatus(d(tt.grand), d(tt.paid))
			assert.Equal(t, tt.wantStatus, status)
			assert.True(t, dues.Equal(d(tt.wantDues)), dues.String())
		})
	}
}

func TestResolvePaymentStatus_DuesNeverNegative(t *testing.T) {
	_, dues := ResolvePaymentStatus(decimal.Zero, d("50"))
	assert.True(t, dues.IsZero())
}
