package tools

import (
	"context"
	"fmt"
	"time"

	"billing-agent/internal/core"
)

// Browser is the store surface the list/detail tools consume.
type Browser interface {
	ListInvoices(ctx context.Context, start, end time.Time, status core.InvoiceStatusFilter, limit int) ([]core.Invoice, error)
	InvoiceByReference(ctx context.Context, ref string) (*core.Invoice, error)
	PaymentsForInvoice(ctx context.Context, invoiceID int64) ([]core.Payment, error)
	ListQuotes(ctx context.Context, start, end time.Time, status core.QuoteStatusFilter, limit int) ([]core.Quote, error)
}

const defaultListLimit = 50

type listInvoicesArgs struct {
	Year      int    `json:"year,omitempty" jsonschema_description:"Calendar year to list. Defaults to the current year."`
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Window start, YYYY-MM-DD. Takes precedence over year; requires end_date."`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"Window end, YYYY-MM-DD, inclusive."`
	Status    string `json:"status,omitempty" jsonschema_description:"Invoice status filter: tous, paye or non_paye."`
	Limit     int    `json:"limit,omitempty" jsonschema_description:"Maximum rows to return (default 50)."`
}

type getInvoiceArgs struct {
	Reference string `json:"reference" jsonschema_description:"The invoice reference, e.g. F-2024-0042."`
}

type listQuotesArgs struct {
	Year      int    `json:"year,omitempty" jsonschema_description:"Calendar year to list. Defaults to the current year."`
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Window start, YYYY-MM-DD. Takes precedence over year; requires end_date."`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"Window end, YYYY-MM-DD, inclusive."`
	Status    string `json:"status,omitempty" jsonschema_description:"Quote status filter: tous, accepte, en_attente or refuse."`
	Limit     int    `json:"limit,omitempty" jsonschema_description:"Maximum rows to return (default 50)."`
}

// ── JSON views ────────────────────────────────────────────────────────────────

type invoiceView struct {
	Reference          string  `json:"reference"`
	CustomerID         *int64  `json:"customer_id,omitempty"`
	InvoiceDate        string  `json:"invoice_date"`
	DueDate            *string `json:"due_date,omitempty"`
	PaymentMode        string  `json:"payment_mode,omitempty"`
	Status             string  `json:"status"`
	PaidOn             *string `json:"paid_on,omitempty"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	TotalHT            float64 `json:"total_ht"`
	TotalTTC           float64 `json:"total_ttc"`
	VATAmount          float64 `json:"vat_amount"`
	Notes              string  `json:"notes,omitempty"`
}

type paymentView struct {
	PaymentDate string  `json:"payment_date"`
	AmountHT    float64 `json:"amount_ht"`
	AmountTTC   float64 `json:"amount_ttc"`
	AmountVAT   float64 `json:"amount_vat"`
	Source      string  `json:"source"`
}

type quoteView struct {
	Reference  string  `json:"reference"`
	CustomerID *int64  `json:"customer_id,omitempty"`
	QuoteDate  string  `json:"quote_date"`
	Status     string  `json:"status"`
	TotalHT    float64 `json:"total_ht"`
	TotalTTC   float64 `json:"total_ttc"`
	VATAmount  float64 `json:"vat_amount"`
}

func viewInvoice(inv core.Invoice) invoiceView {
	v := invoiceView{
		Reference:          inv.Reference,
		CustomerID:         inv.CustomerID,
		InvoiceDate:        inv.InvoiceDate.Format("2006-01-02"),
		PaymentMode:        inv.PaymentMode,
		Status:             invoiceStatusLabel(inv.Status),
		OutstandingBalance: inv.OutstandingBalance().InexactFloat64(),
		TotalHT:            inv.TotalHT.InexactFloat64(),
		TotalTTC:           inv.TotalTTC.InexactFloat64(),
		VATAmount:          inv.VATAmount.InexactFloat64(),
		Notes:              inv.Notes,
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format("2006-01-02")
		v.DueDate = &d
	}
	if inv.PaidOn != nil {
		d := inv.PaidOn.Format("2006-01-02")
		v.PaidOn = &d
	}
	return v
}

func viewQuote(q core.Quote) quoteView {
	return quoteView{
		Reference:  q.Reference,
		CustomerID: q.CustomerID,
		QuoteDate:  q.QuoteDate.Format("2006-01-02"),
		Status:     quoteStatusLabel(q.Status),
		TotalHT:    q.TotalHT.InexactFloat64(),
		TotalTTC:   q.TotalTTC.InexactFloat64(),
		VATAmount:  q.VATAmount.InexactFloat64(),
	}
}

func invoiceStatusLabel(s core.InvoiceStatus) string {
	if s == core.InvoicePaid {
		return "paye"
	}
	return "non_paye"
}

func quoteStatusLabel(s core.QuoteStatus) string {
	switch s {
	case core.QuoteAccepted:
		return "accepte"
	case core.QuoteRefused:
		return "refuse"
	default:
		return "en_attente"
	}
}

// ── Tools ─────────────────────────────────────────────────────────────────────

// NewListInvoicesTool lists mirrored invoices in a period.
func NewListInvoicesTool(browser Browser) Definition {
	return Definition{
		Name:        "list_invoices",
		Description: "List invoices in a period, newest first, optionally filtered by status.",
		InputSchema: inputSchema(listInvoicesArgs{}),
		Handler: func(ctx context.Context, raw map[string]any) (string, error) {
			var args listInvoicesArgs
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
			limit := args.Limit
			if limit <= 0 {
				limit = defaultListLimit
			}

			invoices, err := browser.ListInvoices(ctx, period.Start, period.End, status, limit)
			if err != nil {
				return "", err
			}
			views := make([]invoiceView, 0, len(invoices))
			for _, inv := range invoices {
				views = append(views, viewInvoice(inv))
			}
			return marshalResult(map[string]any{"count": len(views), "invoices": views})
		},
	}
}

// NewGetInvoiceTool returns one invoice with its ledger payments.
func NewGetInvoiceTool(browser Browser) Definition {
	return Definition{
		Name:        "get_invoice",
		Description: "Fetch a single invoice by reference, including its payments-ledger rows.",
		InputSchema: inputSchema(getInvoiceArgs{}),
		Handler: func(ctx context.Context, raw map[string]any) (string, error) {
			var args getInvoiceArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}
			if args.Reference == "" {
				return "", fmt.Errorf("%w: reference is required", core.ErrInvalidArgument)
			}

			inv, err := browser.InvoiceByReference(ctx, args.Reference)
			if err != nil {
				return "", err
			}
			payments, err := browser.PaymentsForInvoice(ctx, inv.ID)
			if err != nil {
				return "", err
			}
			views := make([]paymentView, 0, len(payments))
			for _, p := range payments {
				views = append(views, paymentView{
					PaymentDate: p.PaymentDate.Format("2006-01-02"),
					AmountHT:    p.AmountHT.InexactFloat64(),
					AmountTTC:   p.AmountTTC.InexactFloat64(),
					AmountVAT:   p.AmountVAT.InexactFloat64(),
					Source:      string(p.Source),
				})
			}
			return marshalResult(map[string]any{"invoice": viewInvoice(*inv), "payments": views})
		},
	}
}

// NewListQuotesTool lists mirrored quotes in a period.
func NewListQuotesTool(browser Browser) Definition {
	return Definition{
		Name:        "list_quotes",
		Description: "List quotes in a period, optionally filtered by status.",
		InputSchema: inputSchema(listQuotesArgs{}),
		Handler: func(ctx context.Context, raw map[string]any) (string, error) {
			var args listQuotesArgs
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
			limit := args.Limit
			if limit <= 0 {
				limit = defaultListLimit
			}

			quotes, err := browser.ListQuotes(ctx, period.Start, period.End, status, limit)
			if err != nil {
				return "", err
			}
			views := make([]quoteView, 0, len(quotes))
			for _, q := range quotes {
				views = append(views, viewQuote(q))
			}
			return marshalResult(map[string]any{"count": len(views), "quotes": views})
		},
	}
}
