package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"billing-agent/internal/core"
)

const invoiceColumns = `id, reference, customer_id, invoice_date, due_date, payment_mode,
       status, paid_on, payment_date, balance, total_ht, total_ttc, vat_amount, notes, updated_at`

// Postgres implements core.Store over the mirrored cache. It only ever
// reads; the sync process owns all writes.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// storeErr tags an I/O failure so callers can errors.Is it as
// core.ErrStoreUnavailable without losing the pgx cause.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(core.ErrStoreUnavailable, err))
}

func (p *Postgres) InvoicesIssuedBetween(ctx context.Context, start, end time.Time, status core.InvoiceStatusFilter) ([]core.Invoice, error) {
	var c conds
	c.periodFilter("invoice_date", start, end)
	c.invoiceStatusFilter(status)

	q := "SELECT " + invoiceColumns + " FROM invoices" + c.clause() + " ORDER BY invoice_date, id"
	rows, err := p.pool.Query(ctx, q, c.args...)
	if err != nil {
		return nil, storeErr("query invoices issued", err)
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// InvoicesSettledBetween fetches the superset of invoices that may carry a
// settlement event in the window: fully settled (paid_on) or partially
// settled (payment_date, else updated_at). Classification happens in Go.
func (p *Postgres) InvoicesSettledBetween(ctx context.Context, start, end time.Time) ([]core.Invoice, error) {
	q := "SELECT " + invoiceColumns + ` FROM invoices
		WHERE (paid_on >= $1 AND paid_on <= $2)
		   OR (COALESCE(payment_date, updated_at::date) >= $1 AND COALESCE(payment_date, updated_at::date) <= $2)
		ORDER BY id`
	rows, err := p.pool.Query(ctx, q, start, end)
	if err != nil {
		return nil, storeErr("query invoices settled", err)
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (p *Postgres) PaymentsBetween(ctx context.Context, start, end time.Time) ([]core.Payment, error) {
	const q = `
		SELECT p.id, p.invoice_id, i.customer_id, p.payment_date,
		       p.amount_ht, p.amount_ttc, p.amount_vat, p.source
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.payment_date >= $1 AND p.payment_date <= $2
		ORDER BY p.payment_date, p.id`
	rows, err := p.pool.Query(ctx, q, start, end)
	if err != nil {
		return nil, storeErr("query payments", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var pm core.Payment
		var source string
		if err := rows.Scan(&pm.ID, &pm.InvoiceID, &pm.CustomerID, &pm.PaymentDate,
			&pm.AmountHT, &pm.AmountTTC, &pm.AmountVAT, &source); err != nil {
			return nil, storeErr("scan payment", err)
		}
		pm.Source = core.PaymentSource(source)
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate payments", err)
	}
	return out, nil
}

func (p *Postgres) CountPaymentsBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM payments WHERE payment_date >= $1 AND payment_date <= $2",
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, storeErr("count payments", err)
	}
	return n, nil
}

func (p *Postgres) QuotesBetween(ctx context.Context, start, end time.Time, status core.QuoteStatusFilter) ([]core.Quote, error) {
	var c conds
	c.periodFilter("quote_date", start, end)
	c.quoteStatusFilter(status)

	q := "SELECT id, reference, customer_id, quote_date, status, total_ht, total_ttc, vat_amount FROM quotes" +
		c.clause() + " ORDER BY quote_date, id"
	rows, err := p.pool.Query(ctx, q, c.args...)
	if err != nil {
		return nil, storeErr("query quotes", err)
	}
	defer rows.Close()

	var out []core.Quote
	for rows.Next() {
		var qt core.Quote
		if err := rows.Scan(&qt.ID, &qt.Reference, &qt.CustomerID, &qt.QuoteDate,
			&qt.Status, &qt.TotalHT, &qt.TotalTTC, &qt.VATAmount); err != nil {
			return nil, storeErr("scan quote", err)
		}
		out = append(out, qt)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate quotes", err)
	}
	return out, nil
}

// ── Browse queries (list/detail tools) ────────────────────────────────────────

func (p *Postgres) ListInvoices(ctx context.Context, start, end time.Time, status core.InvoiceStatusFilter, limit int) ([]core.Invoice, error) {
	var c conds
	c.periodFilter("invoice_date", start, end)
	c.invoiceStatusFilter(status)

	q := "SELECT " + invoiceColumns + " FROM invoices" + c.clause() + " ORDER BY invoice_date DESC, id DESC"
	if limit > 0 {
		c.args = append(c.args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(c.args))
	}
	rows, err := p.pool.Query(ctx, q, c.args...)
	if err != nil {
		return nil, storeErr("list invoices", err)
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (p *Postgres) InvoiceByReference(ctx context.Context, ref string) (*core.Invoice, error) {
	q := "SELECT " + invoiceColumns + " FROM invoices WHERE reference = $1"
	rows, err := p.pool.Query(ctx, q, ref)
	if err != nil {
		return nil, storeErr("get invoice", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, fmt.Errorf("invoice %s not found", ref)
	}
	return &invoices[0], nil
}

func (p *Postgres) PaymentsForInvoice(ctx context.Context, invoiceID int64) ([]core.Payment, error) {
	const q = `
		SELECT p.id, p.invoice_id, i.customer_id, p.payment_date,
		       p.amount_ht, p.amount_ttc, p.amount_vat, p.source
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.invoice_id = $1
		ORDER BY p.payment_date, p.id`
	rows, err := p.pool.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, storeErr("payments for invoice", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var pm core.Payment
		var source string
		if err := rows.Scan(&pm.ID, &pm.InvoiceID, &pm.CustomerID, &pm.PaymentDate,
			&pm.AmountHT, &pm.AmountTTC, &pm.AmountVAT, &source); err != nil {
			return nil, storeErr("scan payment", err)
		}
		pm.Source = core.PaymentSource(source)
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate payments", err)
	}
	return out, nil
}

func (p *Postgres) ListQuotes(ctx context.Context, start, end time.Time, status core.QuoteStatusFilter, limit int) ([]core.Quote, error) {
	quotes, err := p.QuotesBetween(ctx, start, end, status)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(quotes) > limit {
		quotes = quotes[:limit]
	}
	return quotes, nil
}

// TableCounts returns row counts per mirrored table, for the verify command.
func (p *Postgres) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, table := range []string{"customers", "invoices", "quotes", "payments"} {
		var n int64
		if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, storeErr("count "+table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func scanInvoices(rows pgx.Rows) ([]core.Invoice, error) {
	var out []core.Invoice
	for rows.Next() {
		var inv core.Invoice
		if err := rows.Scan(&inv.ID, &inv.Reference, &inv.CustomerID, &inv.InvoiceDate,
			&inv.DueDate, &inv.PaymentMode, &inv.Status, &inv.PaidOn, &inv.PaymentDate,
			&inv.Balance, &inv.TotalHT, &inv.TotalTTC, &inv.VATAmount, &inv.Notes,
			&inv.UpdatedAt); err != nil {
			return nil, storeErr("scan invoice", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate invoices", err)
	}
	return out, nil
}
