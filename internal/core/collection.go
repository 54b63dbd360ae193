package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CollectionKind says how an invoice contributes to collected revenue
// inside a window.
type CollectionKind int

const (
	// CollectNone: no settlement event inside the window.
	CollectNone CollectionKind = iota
	// CollectFull: the invoice was fully settled inside the window and
	// contributes its whole amount.
	CollectFull
	// CollectPartial: a partial payment landed inside the window and the
	// invoice contributes a pro-rated amount.
	CollectPartial
)

// Collection is the outcome of classifying one invoice against a window.
// For CollectFull and CollectPartial, Date anchors the event (it decides the
// breakdown month) and TTC/HT/VAT are the contributed amounts.
type Collection struct {
	Kind  CollectionKind
	Date  time.Time
	Ratio decimal.Decimal
	TTC   decimal.Decimal
	HT    decimal.Decimal
	VAT   decimal.Decimal
}

// ClassifyCollection decides how much of an invoice counts as collected in
// [start, end] (inclusive, day granularity). Pure: no storage, no clock.
//
// Rules, in precedence order:
//
//  1. FULL — status is paid and paid_on falls in the window. Wins even when
//     the row also looks partially paid (inconsistent data happens).
//  2. PARTIAL — 0 < balance < total_ttc and the settlement date
//     (payment_date, else updated_at) falls in the window. Contributes
//     total_ttc − balance directly; HT and VAT are scaled by
//     ratio = (total_ttc − balance) / total_ttc.
//  3. NONE otherwise. In particular an unpaid invoice with a zero or empty
//     balance contributes nothing: status is authoritative for the FULL
//     bucket, a missing balance never promotes an unpaid invoice.
//
// A zero total_ttc never reaches the division: a positive balance cannot be
// below it, so the invoice classifies as NONE (ratio 0 by definition).
func ClassifyCollection(inv Invoice, start, end time.Time) (Collection, error) {
	within := func(t time.Time) bool {
		d := dateOnly(t)
		return !d.Before(dateOnly(start)) && !d.After(dateOnly(end))
	}

	if inv.Status == InvoicePaid && inv.PaidOn != nil && within(*inv.PaidOn) {
		return Collection{
			Kind:  CollectFull,
			Date:  dateOnly(*inv.PaidOn),
			Ratio: decimal.NewFromInt(1),
			TTC:   inv.TotalTTC,
			HT:    inv.TotalHT,
			VAT:   inv.VATAmount,
		}, nil
	}

	balance := inv.OutstandingBalance()
	if balance.IsPositive() && balance.LessThan(inv.TotalTTC) {
		settled := inv.SettlementDate()
		if within(settled) {
			collected := inv.TotalTTC.Sub(balance)
			ratio := decimal.Zero
			if !inv.TotalTTC.IsZero() {
				ratio = collected.Div(inv.TotalTTC)
			}
			if ratio.IsNegative() || ratio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
				return Collection{}, fmt.Errorf("%w: paid ratio %s out of (0,1) for invoice %s",
					ErrInconsistent, ratio, inv.Reference)
			}
			return Collection{
				Kind:  CollectPartial,
				Date:  settled,
				Ratio: ratio,
				TTC:   collected,
				HT:    inv.TotalHT.Mul(ratio),
				VAT:   inv.VATAmount.Mul(ratio),
			}, nil
		}
	}

	return Collection{Kind: CollectNone}, nil
}
