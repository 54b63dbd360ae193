package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"billing-agent/internal/db"
	"billing-agent/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Sanity-check the mirrored cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		counts, err := store.New(pool).TableCounts(ctx)
		if err != nil {
			return err
		}
		for _, table := range []string{"customers", "invoices", "quotes", "payments"} {
			fmt.Printf("%-10s %d\n", table, counts[table])
		}

		// TTC must equal HT + VAT on every mirrored invoice.
		var broken int
		err = pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM invoices WHERE total_ttc <> total_ht + vat_amount",
		).Scan(&broken)
		if err != nil {
			return err
		}
		if broken > 0 {
			return fmt.Errorf("%d invoices violate total_ttc = total_ht + vat_amount", broken)
		}

		// A balance above the invoice total means the mirror is corrupt.
		var overdrawn int
		err = pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM invoices
			WHERE balance IS NOT NULL AND balance <> ''
			  AND balance::numeric > total_ttc`,
		).Scan(&overdrawn)
		if err != nil {
			return err
		}
		if overdrawn > 0 {
			return fmt.Errorf("%d invoices have balance > total_ttc", overdrawn)
		}

		var orphans int
		err = pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM payments p LEFT JOIN invoices i ON i.id = p.invoice_id WHERE i.id IS NULL",
		).Scan(&orphans)
		if err != nil {
			return err
		}
		if orphans > 0 {
			return fmt.Errorf("%d payments reference missing invoices", orphans)
		}

		fmt.Println("cache OK")
		return nil
	},
}
