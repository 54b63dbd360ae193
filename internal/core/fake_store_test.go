package core_test

import (
	"context"
	"time"

	"billing-agent/internal/core"
)

// fakeStore is an in-memory core.Store mimicking the cache's date-window
// semantics, so the aggregators can be exercised without Postgres.
type fakeStore struct {
	invoices []core.Invoice
	payments []core.Payment
	quotes   []core.Quote
	err      error
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (f *fakeStore) InvoicesIssuedBetween(_ context.Context, start, end time.Time, status core.InvoiceStatusFilter) ([]core.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Invoice
	for _, inv := range f.invoices {
		if !inWindow(inv.InvoiceDate, start, end) {
			continue
		}
		switch status {
		case core.InvoiceFilterPaid:
			if inv.Status != core.InvoicePaid {
				continue
			}
		case core.InvoiceFilterUnpaid:
			if inv.Status != core.InvoiceUnpaid {
				continue
			}
		}
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeStore) InvoicesSettledBetween(_ context.Context, start, end time.Time) ([]core.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Invoice
	for _, inv := range f.invoices {
		if (inv.PaidOn != nil && inWindow(*inv.PaidOn, start, end)) ||
			inWindow(inv.SettlementDate(), start, end) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeStore) PaymentsBetween(_ context.Context, start, end time.Time) ([]core.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Payment
	for _, p := range f.payments {
		if inWindow(p.PaymentDate, start, end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CountPaymentsBetween(ctx context.Context, start, end time.Time) (int, error) {
	payments, err := f.PaymentsBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return len(payments), nil
}

func (f *fakeStore) QuotesBetween(_ context.Context, start, end time.Time, status core.QuoteStatusFilter) ([]core.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Quote
	for _, q := range f.quotes {
		if !inWindow(q.QuoteDate, start, end) {
			continue
		}
		switch status {
		case core.QuoteFilterAccepted:
			if q.Status != core.QuoteAccepted {
				continue
			}
		case core.QuoteFilterPending:
			if q.Status != core.QuotePending {
				continue
			}
		case core.QuoteFilterRefused:
			if q.Status != core.QuoteRefused {
				continue
			}
		}
		out = append(out, q)
	}
	return out, nil
}
