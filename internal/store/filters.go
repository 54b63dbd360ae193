package store

import (
	"fmt"
	"strings"
	"time"

	"billing-agent/internal/core"
)

// conds accumulates parameterized WHERE predicates. Each expr carries a
// single %d verb that is rewritten to the positional placeholder of the
// value appended alongside it, so clauses stay composable and the argument
// numbering can never drift from the argument slice.
type conds struct {
	exprs []string
	args  []any
}

func (c *conds) add(expr string, val any) {
	c.args = append(c.args, val)
	c.exprs = append(c.exprs, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) clause() string {
	if len(c.exprs) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.exprs, " AND ")
}

// periodFilter constrains a date column to an inclusive window.
func (c *conds) periodFilter(column string, start, end time.Time) {
	c.add(column+" >= $%d", start)
	c.add(column+" <= $%d", end)
}

// invoiceStatusFilter constrains the invoice status column. The ALL filter
// adds nothing.
func (c *conds) invoiceStatusFilter(filter core.InvoiceStatusFilter) {
	switch filter {
	case core.InvoiceFilterPaid:
		c.add("status = $%d", int(core.InvoicePaid))
	case core.InvoiceFilterUnpaid:
		c.add("status = $%d", int(core.InvoiceUnpaid))
	}
}

// quoteStatusFilter constrains the quote status column. The ALL filter adds
// nothing.
func (c *conds) quoteStatusFilter(filter core.QuoteStatusFilter) {
	switch filter {
	case core.QuoteFilterAccepted:
		c.add("status = $%d", int(core.QuoteAccepted))
	case core.QuoteFilterPending:
		c.add("status = $%d", int(core.QuotePending))
	case core.QuoteFilterRefused:
		c.add("status = $%d", int(core.QuoteRefused))
	}
}
