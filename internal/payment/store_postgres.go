package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "crosspay/pkg/domain-errors"
)

// PostgresRecordStore implements RecordStore on PostgreSQL via pgx.
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordStore wraps an open pool.
func NewPostgresRecordStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

func (s *PostgresRecordStore) Save(ctx context.Context, result Result) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payment_records (
			transaction_id, success, state,
			original_amount, original_currency,
			settlement_amount, settlement_currency, exchange_rate, conversion_fees,
			rate_provider, rate_as_of,
			tax_amount, tax_rate, tax_jurisdiction, reverse_charge,
			compliance_status, requires_manual_review, warnings,
			gateway_transaction_id, method, processing_time, error, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		result.TransactionID, result.Success, result.State,
		result.OriginalAmount, result.OriginalCurrency,
		result.SettlementAmount, result.SettlementCurrency, result.ExchangeRate, result.ConversionFees,
		nullString(result.RateProvider), nullTime(result.RateAsOf),
		result.TaxAmount, result.TaxRate, nullString(result.TaxJurisdiction), result.ReverseCharge,
		result.ComplianceStatus, result.RequiresManualReview, result.Warnings,
		nullString(result.GatewayTransactionID), nullString(result.Method), nullString(result.ProcessingTime),
		nullString(result.Error), result.CreatedAt)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save payment record")
	}
	return nil
}

func (s *PostgresRecordStore) FindByTransactionID(ctx context.Context, transactionID string) (Result, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT transaction_id, success, state,
			original_amount, original_currency,
			settlement_amount, settlement_currency, exchange_rate, conversion_fees,
			COALESCE(rate_provider, ''), COALESCE(rate_as_of, 'epoch'::timestamptz),
			tax_amount, tax_rate, COALESCE(tax_jurisdiction, ''), reverse_charge,
			compliance_status, requires_manual_review, warnings,
			COALESCE(gateway_transaction_id, ''), COALESCE(method, ''), COALESCE(processing_time, ''),
			COALESCE(error, ''), created_at
		FROM payment_records
		WHERE transaction_id = $1`,
		transactionID)

	var result Result
	err := row.Scan(
		&result.TransactionID, &result.Success, &result.State,
		&result.OriginalAmount, &result.OriginalCurrency,
		&result.SettlementAmount, &result.SettlementCurrency, &result.ExchangeRate, &result.ConversionFees,
		&result.RateProvider, &result.RateAsOf,
		&result.TaxAmount, &result.TaxRate, &result.TaxJurisdiction, &result.ReverseCharge,
		&result.ComplianceStatus, &result.RequiresManualReview, &result.Warnings,
		&result.GatewayTransactionID, &result.Method, &result.ProcessingTime,
		&result.Error, &result.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, dErrors.Newf(dErrors.CodeNotFound, "transaction %s not found", transactionID)
	}
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "load payment record")
	}
	return result, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
