package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billing-agent/internal/core"
)

// Syncer mirrors the remote billing account into the local cache. Each run
// overwrites the mirrored tables wholesale inside one transaction, so
// readers either see the previous snapshot or the new one, never a mix.
type Syncer struct {
	pool   *pgxpool.Pool
	client *Client
	log    zerolog.Logger
}

func NewSyncer(pool *pgxpool.Pool, client *Client, log zerolog.Logger) *Syncer {
	return &Syncer{pool: pool, client: client, log: log}
}

// Run fetches all entities and rewrites the cache.
func (s *Syncer) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	log.Info().Str("endpoint", s.client.BaseURL()).Msg("sync started")

	customers, err := s.client.FetchCustomers(ctx)
	if err != nil {
		return fmt.Errorf("fetch customers: %w", err)
	}
	invoices, err := s.client.FetchInvoices(ctx)
	if err != nil {
		return fmt.Errorf("fetch invoices: %w", err)
	}
	quotes, err := s.client.FetchQuotes(ctx)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	payments, err := s.client.FetchPayments(ctx)
	if err != nil {
		return fmt.Errorf("fetch payments: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sync transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Child tables first, FKs point upward.
	for _, table := range []string{"payments", "invoices", "quotes", "customers"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := copyCustomers(ctx, tx, customers); err != nil {
		return err
	}
	if err := copyInvoices(ctx, tx, invoices); err != nil {
		return err
	}
	if err := copyQuotes(ctx, tx, quotes); err != nil {
		return err
	}
	if err := copyPayments(ctx, tx, payments); err != nil {
		return err
	}

	derived, err := insertDerivedPayments(ctx, tx, invoices, payments)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sync transaction: %w", err)
	}

	log.Info().
		Int("customers", len(customers)).
		Int("invoices", len(invoices)).
		Int("quotes", len(quotes)).
		Int("payments", len(payments)).
		Int("derived_payments", derived).
		Msg("sync finished")
	return nil
}

func copyCustomers(ctx context.Context, tx pgx.Tx, customers []apiCustomer) error {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c.ID, c.Name, c.Email})
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"customers"},
		[]string{"id", "name", "email"}, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy customers: %w", err)
	}
	return nil
}

func copyInvoices(ctx context.Context, tx pgx.Tx, invoices []apiInvoice) error {
	rows := make([][]any, 0, len(invoices))
	for _, inv := range invoices {
		invoiceDate, err := parseDay(inv.InvoiceDate)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Reference, err)
		}
		dueDate, err := parseDayPtr(inv.DueDate)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Reference, err)
		}
		paidOn, err := parseDayPtr(inv.PaidOn)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Reference, err)
		}
		paymentDate, err := parseDayPtr(inv.PaymentDate)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Reference, err)
		}
		updatedAt, err := parseStamp(inv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", inv.Reference, err)
		}
		rows = append(rows, []any{
			inv.ID, inv.Reference, inv.CustomerID, invoiceDate, dueDate, inv.PaymentMode,
			inv.Status, paidOn, paymentDate, inv.Balance,
			amountOrZero(inv.TotalHT), amountOrZero(inv.TotalTTC), amountOrZero(inv.VATAmount),
			inv.Notes, updatedAt,
		})
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"invoices"},
		[]string{"id", "reference", "customer_id", "invoice_date", "due_date", "payment_mode",
			"status", "paid_on", "payment_date", "balance",
			"total_ht", "total_ttc", "vat_amount", "notes", "updated_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy invoices: %w", err)
	}
	return nil
}

func copyQuotes(ctx context.Context, tx pgx.Tx, quotes []apiQuote) error {
	rows := make([][]any, 0, len(quotes))
	for _, q := range quotes {
		quoteDate, err := parseDay(q.QuoteDate)
		if err != nil {
			return fmt.Errorf("quote %s: %w", q.Reference, err)
		}
		rows = append(rows, []any{
			q.ID, q.Reference, q.CustomerID, quoteDate, q.Status,
			amountOrZero(q.TotalHT), amountOrZero(q.TotalTTC), amountOrZero(q.VATAmount),
		})
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"quotes"},
		[]string{"id", "reference", "customer_id", "quote_date", "status",
			"total_ht", "total_ttc", "vat_amount"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy quotes: %w", err)
	}
	return nil
}

func copyPayments(ctx context.Context, tx pgx.Tx, payments []apiPayment) error {
	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		paymentDate, err := parseDay(p.PaymentDate)
		if err != nil {
			return fmt.Errorf("payment %d: %w", p.ID, err)
		}
		rows = append(rows, []any{
			p.InvoiceID, paymentDate,
			amountOrZero(p.AmountHT), amountOrZero(p.AmountTTC), amountOrZero(p.AmountVAT),
			string(core.PaymentFromAPI),
		})
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"payments"},
		[]string{"invoice_id", "payment_date", "amount_ht", "amount_ttc", "amount_vat", "source"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy payments: %w", err)
	}
	return nil
}

// insertDerivedPayments reconstructs ledger rows for partially paid invoices
// the API ledger does not cover, so later period queries get ledger coverage
// instead of re-deriving from a balance that may have moved on. The amounts
// come from the same classification rule the aggregator uses — one formula,
// one place.
func insertDerivedPayments(ctx context.Context, tx pgx.Tx, invoices []apiInvoice, payments []apiPayment) (int, error) {
	covered := map[int64]bool{}
	for _, p := range payments {
		covered[p.InvoiceID] = true
	}

	// Open window: any settlement date qualifies.
	windowStart := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

	count := 0
	for _, raw := range invoices {
		if covered[raw.ID] {
			continue
		}
		inv, err := toCoreInvoice(raw)
		if err != nil {
			return 0, fmt.Errorf("invoice %s: %w", raw.Reference, err)
		}
		c, err := core.ClassifyCollection(inv, windowStart, windowEnd)
		if err != nil {
			return 0, fmt.Errorf("invoice %s: %w", raw.Reference, err)
		}
		if c.Kind != core.CollectPartial {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (invoice_id, payment_date, amount_ht, amount_ttc, amount_vat, source)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			inv.ID, c.Date, c.HT, c.TTC, c.VAT, string(core.PaymentDerived))
		if err != nil {
			return 0, fmt.Errorf("insert derived payment for %s: %w", raw.Reference, err)
		}
		count++
	}
	return count, nil
}

func toCoreInvoice(raw apiInvoice) (core.Invoice, error) {
	totalHT, err := decimal.NewFromString(amountOrZero(raw.TotalHT))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("total_ht %q: %w", raw.TotalHT, err)
	}
	totalTTC, err := decimal.NewFromString(amountOrZero(raw.TotalTTC))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("total_ttc %q: %w", raw.TotalTTC, err)
	}
	vat, err := decimal.NewFromString(amountOrZero(raw.VATAmount))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("vat_amount %q: %w", raw.VATAmount, err)
	}
	paidOn, err := parseDayPtr(raw.PaidOn)
	if err != nil {
		return core.Invoice{}, err
	}
	paymentDate, err := parseDayPtr(raw.PaymentDate)
	if err != nil {
		return core.Invoice{}, err
	}
	updatedAt, err := parseStamp(raw.UpdatedAt)
	if err != nil {
		return core.Invoice{}, err
	}
	return core.Invoice{
		ID:          raw.ID,
		Reference:   raw.Reference,
		CustomerID:  raw.CustomerID,
		Status:      core.InvoiceStatus(raw.Status),
		PaidOn:      paidOn,
		PaymentDate: paymentDate,
		Balance:     raw.Balance,
		TotalHT:     totalHT,
		TotalTTC:    totalTTC,
		VATAmount:   vat,
		UpdatedAt:   updatedAt,
	}, nil
}

func amountOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	return t, nil
}

func parseDayPtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseStamp accepts the API's two timestamp shapes: RFC 3339 or bare day.
func parseStamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return parseDay(s)
}
