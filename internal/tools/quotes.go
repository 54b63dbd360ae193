package tools

import (
	"context"
	"fmt"
	"time"

	"billing-agent/internal/core"
)

type quotesRevenueArgs struct {
	Year      int    `json:"year,omitempty" jsonschema_description:"Calendar year to aggregate. Defaults to the current year."`
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Window start, YYYY-MM-DD. Takes precedence over year; requires end_date."`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"Window end, YYYY-MM-DD, inclusive."`
	Status    string `json:"status,omitempty" jsonschema_description:"Quote status filter: tous, accepte, en_attente or refuse."`
}

// NewQuotesRevenueTool exposes the quote aggregator as get_quotes_revenue.
func NewQuotesRevenueTool(svc *core.QuoteService) Definition {
	return Definition{
		Name: "get_quotes_revenue",
		Description: "Quote amounts for a period by status, with a 12-month breakdown. " +
			"Purely additive over quote dates; no payment logic.",
		InputSchema: inputSchema(quotesRevenueArgs{}),
		Handler: func(ctx context.Context, raw map[string]any) (string, error) {
			var args quotesRevenueArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}

			period, err := core.ResolvePeriod(args.Year, args.StartDate, args.EndDate, time.Now())
			if err != nil {
				return "", err
			}
			status, err := parseQuoteStatus(args.Status)
			if err != nil {
				return "", err
			}

			report, err := svc.ComputeQuotesRevenue(ctx, core.QuotesQuery{
				Period: period,
				Status: status,
			})
			if err != nil {
				return "", err
			}
			return marshalResult(report)
		},
	}
}

func parseQuoteStatus(s string) (core.QuoteStatusFilter, error) {
	switch s {
	case "", "tous":
		return core.QuoteFilterAll, nil
	case "accepte":
		return core.QuoteFilterAccepted, nil
	case "en_attente":
		return core.QuoteFilterPending, nil
	case "refuse":
		return core.QuoteFilterRefused, nil
	default:
		return 0, fmt.Errorf("%w: status %q (want tous, accepte, en_attente or refuse)", core.ErrInvalidArgument, s)
	}
}
