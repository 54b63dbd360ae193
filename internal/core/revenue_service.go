package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RevenueMode selects the revenue recognition basis.
type RevenueMode int

const (
	// ModeCollected recognizes revenue on the date money actually landed
	// (encaissé): full settlements, pro-rated partials, ledger rows.
	ModeCollected RevenueMode = iota
	// ModeInvoiced recognizes revenue on the invoice issue date (facturé).
	ModeInvoiced
)

// RevenueQuery is one aggregation request. Status applies in invoiced mode
// only; collected mode is defined over settlement events, not status.
type RevenueQuery struct {
	Period Period
	Mode   RevenueMode
	Status InvoiceStatusFilter
}

// MonthlyRevenue is one calendar-month row of a breakdown. All 12 months of
// the anchor year are always emitted, zero-filled when empty.
type MonthlyRevenue struct {
	Month            int     `json:"month"`
	MonthName        string  `json:"month_name"`
	TotalInvoices    int     `json:"total_invoices"`
	TotalInvoicedTTC float64 `json:"total_invoiced_ttc"`
	TotalInvoicedHT  float64 `json:"total_invoiced_ht"`
	TotalVATAmount   float64 `json:"total_vat_amount"`
}

// RevenueSummary carries the headline figures for the requested window plus
// the anchor-year monthly breakdown.
type RevenueSummary struct {
	TotalInvoices    int              `json:"total_invoices"`
	TotalInvoicedTTC float64          `json:"total_invoiced_ttc"`
	TotalInvoicedHT  float64          `json:"total_invoiced_ht"`
	TotalVATAmount   float64          `json:"total_vat_amount"`
	AvgInvoiceAmount float64          `json:"avg_invoice_amount"`
	UniqueCustomers  int              `json:"unique_customers"`
	MonthlyBreakdown []MonthlyRevenue `json:"monthly_breakdown"`
}

// RevenueReport is the wire-level result of ComputeRevenue.
type RevenueReport struct {
	Year      int            `json:"year"`
	QueryType string         `json:"query_type"`
	Revenue   RevenueSummary `json:"revenue"`
}

// RevenueService reconciles invoice totals, partial payments and the
// payments ledger into invoiced/collected figures per period.
type RevenueService struct {
	store Store
	log   zerolog.Logger
}

// NewRevenueService constructs a RevenueService. Pass zerolog.Nop() for
// silent operation.
func NewRevenueService(store Store, log zerolog.Logger) *RevenueService {
	return &RevenueService{store: store, log: log}
}

// ComputeRevenue aggregates revenue for the query's period and mode.
//
// Collected mode decides its computation path once per call: if the ledger
// has any row in the comparison window (requested range ∪ anchor year) the
// ledger rows are summed directly and the invoices they reference are
// excluded from the derived computation, so nothing is counted twice. With
// an empty ledger the whole result is balance-derived.
func (s *RevenueService) ComputeRevenue(ctx context.Context, q RevenueQuery) (*RevenueReport, error) {
	start, end := q.Period.ComparisonWindow()
	agg := newAggregation(q.Period)

	switch q.Mode {
	case ModeInvoiced:
		invoices, err := s.store.InvoicesIssuedBetween(ctx, start, end, q.Status)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			agg.add(inv.InvoiceDate, inv.CustomerID, inv.TotalTTC, inv.TotalHT, inv.VATAmount)
		}
		s.log.Debug().Int("invoices", len(invoices)).Int("year", q.Period.Year).
			Msg("invoiced revenue computed")

	case ModeCollected:
		ledgerRows, err := s.store.CountPaymentsBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}

		covered := map[int64]bool{}
		if ledgerRows > 0 {
			payments, err := s.store.PaymentsBetween(ctx, start, end)
			if err != nil {
				return nil, err
			}
			for _, p := range payments {
				covered[p.InvoiceID] = true
				agg.add(p.PaymentDate, p.CustomerID, p.AmountTTC, p.AmountHT, p.AmountVAT)
			}
		}

		invoices, err := s.store.InvoicesSettledBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			if covered[inv.ID] {
				continue
			}
			c, err := ClassifyCollection(inv, start, end)
			if err != nil {
				return nil, err
			}
			if c.Kind == CollectNone {
				continue
			}
			agg.add(c.Date, inv.CustomerID, c.TTC, c.HT, c.VAT)
		}
		s.log.Debug().Int("ledger_rows", ledgerRows).Int("derived_candidates", len(invoices)).
			Int("year", q.Period.Year).Msg("collected revenue computed")

	default:
		return nil, fmt.Errorf("%w: unknown revenue mode %d", ErrInvalidArgument, q.Mode)
	}

	return &RevenueReport{
		Year:      q.Period.Year,
		QueryType: q.Mode.queryType(),
		Revenue:   agg.summary(),
	}, nil
}

func (m RevenueMode) queryType() string {
	if m == ModeInvoiced {
		return "invoiced"
	}
	return "paid"
}

// ── Reduction ─────────────────────────────────────────────────────────────────

type bucket struct {
	count int
	ttc   decimal.Decimal
	ht    decimal.Decimal
	vat   decimal.Decimal
}

func (b *bucket) add(ttc, ht, vat decimal.Decimal) {
	b.count++
	b.ttc = b.ttc.Add(ttc)
	b.ht = b.ht.Add(ht)
	b.vat = b.vat.Add(vat)
}

// aggregation folds contribution events into the headline bucket (requested
// window) and the per-month buckets (anchor year). An event may land in one,
// both, or neither, depending on its date.
type aggregation struct {
	period    Period
	total     bucket
	months    [12]bucket
	customers map[int64]bool
}

func newAggregation(p Period) *aggregation {
	return &aggregation{period: p, customers: map[int64]bool{}}
}

func (a *aggregation) add(date time.Time, customerID *int64, ttc, ht, vat decimal.Decimal) {
	if a.period.Contains(date) {
		a.total.add(ttc, ht, vat)
		if customerID != nil {
			a.customers[*customerID] = true
		}
	}
	if date.Year() == a.period.Year {
		a.months[int(date.Month())-1].add(ttc, ht, vat)
	}
}

// summary renders the buckets. Amounts convert to float64 without rounding:
// rounding monthly rows independently of the headline total would let their
// sum drift off it, and the breakdown must stay additive.
func (a *aggregation) summary() RevenueSummary {
	out := RevenueSummary{
		TotalInvoices:    a.total.count,
		TotalInvoicedTTC: a.total.ttc.InexactFloat64(),
		TotalInvoicedHT:  a.total.ht.InexactFloat64(),
		TotalVATAmount:   a.total.vat.InexactFloat64(),
		UniqueCustomers:  len(a.customers),
		MonthlyBreakdown: make([]MonthlyRevenue, 12),
	}
	if a.total.count > 0 {
		out.AvgInvoiceAmount = a.total.ttc.Div(decimal.NewFromInt(int64(a.total.count))).
			Round(2).InexactFloat64()
	}
	for i := range a.months {
		out.MonthlyBreakdown[i] = MonthlyRevenue{
			Month:            i + 1,
			MonthName:        MonthNames[i],
			TotalInvoices:    a.months[i].count,
			TotalInvoicedTTC: a.months[i].ttc.InexactFloat64(),
			TotalInvoicedHT:  a.months[i].ht.InexactFloat64(),
			TotalVATAmount:   a.months[i].vat.InexactFloat64(),
		}
	}
	return out
}
