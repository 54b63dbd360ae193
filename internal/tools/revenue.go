package tools

import (
	"context"
	"fmt"
	"time"

	"billing-agent/internal/core"
)

// revenueArgs is the wire contract of get_revenue. Exactly one of year,
// start_date+end_date, or neither (current year) should be supplied;
// start_date/end_date wins over year when both are present.
type revenueArgs struct {
	Year                int    `json:"year,omitempty" jsonschema_description:"Calendar year to aggregate. Defaults to the current year."`
	StartDate           string `json:"start_date,omitempty" jsonschema_description:"Window start, YYYY-MM-DD. Takes precedence over year; requires end_date."`
	EndDate             string `json:"end_date,omitempty" jsonschema_description:"Window end, YYYY-MM-DD, inclusive."`
	Status              string `json:"status,omitempty" jsonschema_description:"Invoice status filter: tous, paye or non_paye. Only applies when filter_by_payment_date is false."`
	FilterByPaymentDate *bool  `json:"filter_by_payment_date,omitempty" jsonschema_description:"true (default): revenue collected, recognized on payment date with partial payments pro-rated. false: revenue invoiced, plain sums over invoice issue dates."`
}

// NewRevenueTool exposes the revenue aggregator as the get_revenue tool.
func NewRevenueTool(svc *core.RevenueService) Definition {
	return Definition{
		Name: "get_revenue",
		Description: "Chiffre d'affaires for a period with a 12-month breakdown. " +
			"Collected mode (default) reconciles full settlements, partial payments and the payments ledger; " +
			"invoiced mode sums invoice totals by issue date.",
		InputSchema: inputSchema(revenueArgs{}),
		Handler: func(ctx context.Context, raw map[string]any) (string, error) {
			var args revenueArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}

			period, err := core.ResolvePeriod(args.Year, args.StartDate, args.EndDate, time.Now())
			if err != nil {
				return "", err
			}
			status, err := parseInvoiceStatus(args.Status)
			if err != nil {
				return "", err
			}

			mode := core.ModeCollected
			if args.FilterByPaymentDate != nil && !*args.FilterByPaymentDate {
				mode = core.ModeInvoiced
			}

			report, err := svc.ComputeRevenue(ctx, core.RevenueQuery{
				Period: period,
				Mode:   mode,
				Status: status,
			})
			if err != nil {
				return "", err
			}
			return marshalResult(report)
		},
	}
}

func parseInvoiceStatus(s string) (core.InvoiceStatusFilter, error) {
	switch s {
	case "", "tous":
		return core.InvoiceFilterAll, nil
	case "paye":
		return core.InvoiceFilterPaid, nil
	case "non_paye":
		return core.InvoiceFilterUnpaid, nil
	default:
		return 0, fmt.Errorf("%w: status %q (want tous, paye or non_paye)", core.ErrInvalidArgument, s)
	}
}
