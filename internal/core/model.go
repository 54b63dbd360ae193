package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus mirrors the billing API's numeric invoice state.
type InvoiceStatus int

const (
	InvoiceUnpaid InvoiceStatus = 0
	InvoicePaid   InvoiceStatus = 1
)

// QuoteStatus mirrors the billing API's numeric quote state.
type QuoteStatus int

const (
	QuotePending  QuoteStatus = 0
	QuoteAccepted QuoteStatus = 1
	QuoteRefused  QuoteStatus = 9
)

// PaymentSource tags where a payments-ledger row came from.
// Rows tagged "from API" carry amounts reported by the remote ledger;
// "derived" rows are reconstructed from invoice balances by the sync process
// when the API exposes no ledger entry for a partially paid invoice.
type PaymentSource string

const (
	PaymentFromAPI PaymentSource = "from API"
	PaymentDerived PaymentSource = "derived"
)

type Customer struct {
	ID    int64
	Name  string
	Email string
}

// Invoice is a mirrored invoice row. Amounts are in the invoice's currency
// and satisfy TotalTTC = TotalHT + VATAmount exactly.
//
// Balance is kept as the raw text the API returned. The API is inconsistent
// here: null, "", "0" and "0.00" all mean "nothing outstanding", and that
// distinction matters to the derived-collection rules, so normalization is
// deferred to OutstandingBalance instead of being done at sync time.
type Invoice struct {
	ID          int64
	Reference   string
	CustomerID  *int64
	InvoiceDate time.Time
	DueDate     *time.Time
	PaymentMode string
	Status      InvoiceStatus
	PaidOn      *time.Time
	PaymentDate *time.Time
	Balance     *string
	TotalHT     decimal.Decimal
	TotalTTC    decimal.Decimal
	VATAmount   decimal.Decimal
	Notes       string
	UpdatedAt   time.Time
}

// OutstandingBalance normalizes the raw Balance field into an amount still
// owed. Null, empty and unparseable values all count as zero (fully paid).
func (i Invoice) OutstandingBalance() decimal.Decimal {
	if i.Balance == nil {
		return decimal.Zero
	}
	raw := strings.TrimSpace(*i.Balance)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SettlementDate is the best-known day a (partial) payment landed: the API's
// payment_date when present, otherwise the row's last update, truncated to
// the day.
func (i Invoice) SettlementDate() time.Time {
	if i.PaymentDate != nil {
		return dateOnly(*i.PaymentDate)
	}
	return dateOnly(i.UpdatedAt)
}

// Payment is one payments-ledger row. CustomerID is denormalized from the
// referenced invoice by the store so aggregation does not need a second query.
type Payment struct {
	ID          int64
	InvoiceID   int64
	CustomerID  *int64
	PaymentDate time.Time
	AmountHT    decimal.Decimal
	AmountTTC   decimal.Decimal
	AmountVAT   decimal.Decimal
	Source      PaymentSource
}

type Quote struct {
	ID         int64
	Reference  string
	CustomerID *int64
	QuoteDate  time.Time
	Status     QuoteStatus
	TotalHT    decimal.Decimal
	TotalTTC   decimal.Decimal
	VATAmount  decimal.Decimal
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
