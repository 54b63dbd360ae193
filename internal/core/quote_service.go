package core

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// QuotesQuery is one quote aggregation request.
type QuotesQuery struct {
	Period Period
	Status QuoteStatusFilter
}

// MonthlyQuotes is one calendar-month row of a quote breakdown.
type MonthlyQuotes struct {
	Month          int     `json:"month"`
	MonthName      string  `json:"month_name"`
	TotalQuotes    int     `json:"total_quotes"`
	TotalTTC       float64 `json:"total_ttc"`
	TotalHT        float64 `json:"total_ht"`
	TotalVATAmount float64 `json:"total_vat_amount"`
}

// QuotesSummary carries headline quote figures plus the anchor-year
// monthly breakdown.
type QuotesSummary struct {
	TotalQuotes      int             `json:"total_quotes"`
	TotalTTC         float64         `json:"total_ttc"`
	TotalHT          float64         `json:"total_ht"`
	TotalVATAmount   float64         `json:"total_vat_amount"`
	AvgQuoteAmount   float64         `json:"avg_quote_amount"`
	UniqueCustomers  int             `json:"unique_customers"`
	MonthlyBreakdown []MonthlyQuotes `json:"monthly_breakdown"`
}

// QuotesReport is the wire-level result of ComputeQuotesRevenue.
type QuotesReport struct {
	Year         int           `json:"year"`
	StatusFilter string        `json:"status_filter"`
	Quotes       QuotesSummary `json:"quotes"`
}

// QuoteService aggregates quote amounts per period. Purely additive: quotes
// have no partial-payment concept, quote_date is the only anchor.
type QuoteService struct {
	store Store
	log   zerolog.Logger
}

// NewQuoteService constructs a QuoteService. Pass zerolog.Nop() for silent
// operation.
func NewQuoteService(store Store, log zerolog.Logger) *QuoteService {
	return &QuoteService{store: store, log: log}
}

// ComputeQuotesRevenue sums quotes whose quote_date falls in the period and
// whose status matches the filter, with the same fill-forward-zero monthly
// breakdown policy as the revenue aggregator.
func (s *QuoteService) ComputeQuotesRevenue(ctx context.Context, q QuotesQuery) (*QuotesReport, error) {
	start, end := q.Period.ComparisonWindow()
	agg := newAggregation(q.Period)

	quotes, err := s.store.QuotesBetween(ctx, start, end, q.Status)
	if err != nil {
		return nil, err
	}
	for _, quote := range quotes {
		agg.add(quote.QuoteDate, quote.CustomerID, quote.TotalTTC, quote.TotalHT, quote.VATAmount)
	}
	s.log.Debug().Int("quotes", len(quotes)).Int("year", q.Period.Year).
		Msg("quote revenue computed")

	return &QuotesReport{
		Year:         q.Period.Year,
		StatusFilter: q.Status.label(),
		Quotes:       quotesSummary(agg),
	}, nil
}

func (f QuoteStatusFilter) label() string {
	switch f {
	case QuoteFilterAccepted:
		return "accepte"
	case QuoteFilterPending:
		return "en_attente"
	case QuoteFilterRefused:
		return "refuse"
	default:
		return "tous"
	}
}

func quotesSummary(a *aggregation) QuotesSummary {
	out := QuotesSummary{
		TotalQuotes:      a.total.count,
		TotalTTC:         a.total.ttc.InexactFloat64(),
		TotalHT:          a.total.ht.InexactFloat64(),
		TotalVATAmount:   a.total.vat.InexactFloat64(),
		UniqueCustomers:  len(a.customers),
		MonthlyBreakdown: make([]MonthlyQuotes, 12),
	}
	if a.total.count > 0 {
		out.AvgQuoteAmount = a.total.ttc.Div(decimal.NewFromInt(int64(a.total.count))).
			Round(2).InexactFloat64()
	}
	for i := range a.months {
		out.MonthlyBreakdown[i] = MonthlyQuotes{
			Month:          i + 1,
			MonthName:      MonthNames[i],
			TotalQuotes:    a.months[i].count,
			TotalTTC:       a.months[i].ttc.InexactFloat64(),
			TotalHT:        a.months[i].ht.InexactFloat64(),
			TotalVATAmount: a.months[i].vat.InexactFloat64(),
		}
	}
	return out
}
