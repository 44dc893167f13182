package tax

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresInvoiceStore persists invoices in PostgreSQL. Sequence
// allocation uses an upsert with RETURNING so concurrent issuers never
// hand out the same number.
type PostgresInvoiceStore struct {
	db *sql.DB
}

// NewPostgresInvoiceStore creates a store on db.
func NewPostgresInvoiceStore(db *sql.DB) *PostgresInvoiceStore {
	return &PostgresInvoiceStore{db: db}
}

func (s *PostgresInvoiceStore) NextSequence(ctx context.Context, year int, country string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO invoice_sequences (year, country, next_seq)
		VALUES ($1, $2, 2)
		ON CONFLICT (year, country)
		DO UPDATE SET next_seq = invoice_sequences.next_seq + 1
		RETURNING next_seq - 1`,
		year, country,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate invoice sequence: %w", err)
	}
	return seq, nil
}

func (s *PostgresInvoiceStore) Save(ctx context.Context, invoice Invoice) error {
	lineItems, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tax_invoices
			(number, customer_name, customer_country, customer_vat, line_items, currency, tax_amount, tax_rate, total_amount, reverse_charge, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		invoice.Number, invoice.CustomerName, invoice.CustomerCountry,
		nullIfEmpty(invoice.CustomerVAT), lineItems, invoice.Currency,
		invoice.TaxAmount, invoice.TaxRate, invoice.TotalAmount,
		invoice.ReverseCharge, invoice.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PostgresInvoiceStore) FindByNumber(ctx context.Context, number string) (Invoice, error) {
	var (
		invoice   Invoice
		vat       sql.NullString
		lineItems []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT number, customer_name, customer_country, customer_vat, line_items, currency, tax_amount, tax_rate, total_amount, reverse_charge, issued_at
		FROM tax_invoices
		WHERE number = $1`,
		number,
	).Scan(&invoice.Number, &invoice.CustomerName, &invoice.CustomerCountry,
		&vat, &lineItems, &invoice.Currency, &invoice.TaxAmount, &invoice.TaxRate,
		&invoice.TotalAmount, &invoice.ReverseCharge, &invoice.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("query invoice: %w", err)
	}
	if err := json.Unmarshal(lineItems, &invoice.LineItems); err != nil {
		return Invoice{}, fmt.Errorf("unmarshal line items: %w", err)
	}
	if vat.Valid {
		invoice.CustomerVAT = vat.String
	}
	return invoice, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
