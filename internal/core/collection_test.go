package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"billing-agent/internal/core"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func strPtr(s string) *string { return &s }

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClassifyCollection(t *testing.T) {
	windowStart := day("2024-01-01")
	windowEnd := day("2024-12-31")

	tests := []struct {
		name      string
		invoice   core.Invoice
		wantKind  core.CollectionKind
		wantTTC   string
		wantHT    string
		wantVAT   string
		wantMonth time.Month
	}{
		{
			name: "paid in window contributes fully",
			invoice: core.Invoice{
				Status: core.InvoicePaid, PaidOn: dayPtr("2024-03-15"),
				TotalTTC: amt("1200"), TotalHT: amt("1000"), VATAmount: amt("200"),
			},
			wantKind: core.CollectFull, wantTTC: "1200", wantHT: "1000", wantVAT: "200",
			wantMonth: time.March,
		},
		{
			name: "paid outside window contributes nothing",
			invoice: core.Invoice{
				Status: core.InvoicePaid, PaidOn: dayPtr("2023-03-15"),
				TotalTTC: amt("1200"), TotalHT: amt("1000"), VATAmount: amt("200"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "partial balance pro-rates by paid ratio",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("400"),
				PaymentDate: dayPtr("2024-05-01"),
				TotalTTC:    amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
			},
			wantKind: core.CollectPartial, wantTTC: "600", wantHT: "480", wantVAT: "120",
			wantMonth: time.May,
		},
		{
			name: "unpaid with empty balance contributes nothing",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr(""),
				TotalTTC: amt("500"), TotalHT: amt("400"), VATAmount: amt("100"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "unpaid with nil balance contributes nothing",
			invoice: core.Invoice{
				Status:   core.InvoiceUnpaid,
				TotalTTC: amt("500"), TotalHT: amt("400"), VATAmount: amt("100"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "unpaid with zero balance contributes nothing",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("0"),
				TotalTTC: amt("500"), TotalHT: amt("400"), VATAmount: amt("100"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "unpaid with 0.00 balance contributes nothing",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("0.00"),
				TotalTTC: amt("500"), TotalHT: amt("400"), VATAmount: amt("100"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "full settlement wins over a stale partial balance",
			invoice: core.Invoice{
				Status: core.InvoicePaid, PaidOn: dayPtr("2024-07-20"),
				Balance:  strPtr("400"),
				TotalTTC: amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
			},
			wantKind: core.CollectFull, wantTTC: "1000", wantHT: "800", wantVAT: "200",
			wantMonth: time.July,
		},
		{
			name: "zero total never divides",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("10"),
				TotalTTC: amt("0"), TotalHT: amt("0"), VATAmount: amt("0"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "balance equal to total means nothing collected",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("1000"),
				TotalTTC: amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "unparseable balance treated as settled but status blocks it",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("n/a"),
				TotalTTC: amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
				UpdatedAt: day("2024-02-01"),
			},
			wantKind: core.CollectNone,
		},
		{
			name: "settlement date falls back to updated_at",
			invoice: core.Invoice{
				Status: core.InvoiceUnpaid, Balance: strPtr("250"),
				TotalTTC: amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
				UpdatedAt: time.Date(2024, time.September, 3, 15, 42, 0, 0, time.UTC),
			},
			wantKind: core.CollectPartial, wantTTC: "750", wantHT: "600", wantVAT: "150",
			wantMonth: time.September,
		},
		{
			name: "paid status without paid_on still classifies as partial",
			invoice: core.Invoice{
				Status: core.InvoicePaid, Balance: strPtr("100"),
				PaymentDate: dayPtr("2024-11-02"),
				TotalTTC:    amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
			},
			wantKind: core.CollectPartial, wantTTC: "900", wantHT: "720", wantVAT: "180",
			wantMonth: time.November,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := core.ClassifyCollection(tt.invoice, windowStart, windowEnd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Kind != tt.wantKind {
				t.Fatalf("kind = %d, want %d", c.Kind, tt.wantKind)
			}
			if tt.wantKind == core.CollectNone {
				return
			}
			if !c.TTC.Equal(amt(tt.wantTTC)) {
				t.Errorf("TTC = %s, want %s", c.TTC, tt.wantTTC)
			}
			if !c.HT.Equal(amt(tt.wantHT)) {
				t.Errorf("HT = %s, want %s", c.HT, tt.wantHT)
			}
			if !c.VAT.Equal(amt(tt.wantVAT)) {
				t.Errorf("VAT = %s, want %s", c.VAT, tt.wantVAT)
			}
			if c.Date.Month() != tt.wantMonth {
				t.Errorf("month = %s, want %s", c.Date.Month(), tt.wantMonth)
			}
			// ht + vat must re-add to ttc
			if !c.HT.Add(c.VAT).Sub(c.TTC).Abs().LessThan(amt("0.000001")) {
				t.Errorf("HT %s + VAT %s does not reconcile with TTC %s", c.HT, c.VAT, c.TTC)
			}
		})
	}
}

func TestClassifyCollection_PartialRatioBounds(t *testing.T) {
	// Any positive balance strictly below total must land in (0, 1).
	for _, balance := range []string{"0.01", "1", "500", "999.99"} {
		inv := core.Invoice{
			Status: core.InvoiceUnpaid, Balance: strPtr(balance),
			PaymentDate: dayPtr("2024-05-01"),
			TotalTTC:    amt("1000"), TotalHT: amt("800"), VATAmount: amt("200"),
		}
		c, err := core.ClassifyCollection(inv, day("2024-01-01"), day("2024-12-31"))
		if err != nil {
			t.Fatalf("balance %s: unexpected error: %v", balance, err)
		}
		if c.Kind != core.CollectPartial {
			t.Fatalf("balance %s: kind = %d, want partial", balance, c.Kind)
		}
		if !c.Ratio.IsPositive() || c.Ratio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			t.Errorf("balance %s: ratio %s out of (0,1)", balance, c.Ratio)
		}
	}
}

func TestClassifyCollection_WindowEdges(t *testing.T) {
	inv := core.Invoice{
		Status: core.InvoicePaid, PaidOn: dayPtr("2024-12-31"),
		TotalTTC: amt("100"), TotalHT: amt("80"), VATAmount: amt("20"),
	}
	c, err := core.ClassifyCollection(inv, day("2024-01-01"), day("2024-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind != core.CollectFull {
		t.Errorf("paid on the window's last day must count, got kind %d", c.Kind)
	}
}

func TestOutstandingBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance *string
		want    string
	}{
		{"nil", nil, "0"},
		{"empty", strPtr(""), "0"},
		{"whitespace", strPtr("  "), "0"},
		{"zero", strPtr("0"), "0"},
		{"zero with decimals", strPtr("0.00"), "0"},
		{"amount", strPtr("123.45"), "123.45"},
		{"garbage", strPtr("abc"), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.Invoice{Balance: tt.balance}.OutstandingBalance()
			if !got.Equal(amt(tt.want)) {
				t.Errorf("OutstandingBalance() = %s, want %s", got, tt.want)
			}
		})
	}
}
