package core

import (
	"context"
	"time"
)

// Store is the read-only view of the relational cache the aggregators
// consume. All windows are inclusive and day-granular. Implementations must
// not mutate the cache; the sync process is the only writer.
type Store interface {
	// InvoicesIssuedBetween returns invoices whose invoice_date falls in the
	// window, filtered by status.
	InvoicesIssuedBetween(ctx context.Context, start, end time.Time, status InvoiceStatusFilter) ([]Invoice, error)

	// InvoicesSettledBetween returns every invoice that may have a
	// settlement event in the window: paid_on, payment_date or updated_at
	// inside it. A superset is fine — classification happens in Go.
	InvoicesSettledBetween(ctx context.Context, start, end time.Time) ([]Invoice, error)

	// PaymentsBetween returns ledger rows whose payment_date falls in the
	// window, with CustomerID denormalized from the invoice.
	PaymentsBetween(ctx context.Context, start, end time.Time) ([]Payment, error)

	// CountPaymentsBetween reports how many ledger rows fall in the window.
	// It gates the ledger-vs-derived computation path.
	CountPaymentsBetween(ctx context.Context, start, end time.Time) (int, error)

	// QuotesBetween returns quotes whose quote_date falls in the window,
	// filtered by status.
	QuotesBetween(ctx context.Context, start, end time.Time, status QuoteStatusFilter) ([]Quote, error)
}

// InvoiceStatusFilter selects invoices by settlement status.
type InvoiceStatusFilter int

const (
	InvoiceFilterAll InvoiceStatusFilter = iota
	InvoiceFilterPaid
	InvoiceFilterUnpaid
)

// QuoteStatusFilter selects quotes by lifecycle status.
type QuoteStatusFilter int

const (
	QuoteFilterAll QuoteStatusFilter = iota
	QuoteFilterAccepted
	QuoteFilterPending
	QuoteFilterRefused
)
