package compliance

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresConsentStore implements ConsentStore on PostgreSQL.
type PostgresConsentStore struct {
	db *sql.DB
}

// NewPostgresConsentStore wraps an open connection pool.
func NewPostgresConsentStore(db *sql.DB) *PostgresConsentStore {
	return &PostgresConsentStore{db: db}
}

func (s *PostgresConsentStore) Save(ctx context.Context, record ConsentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consent_records (customer_id, purpose, granted, granted_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)`,
		record.CustomerID, record.Purpose, record.Granted, record.GrantedAt, record.RevokedAt)
	if err != nil {
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

func (s *PostgresConsentStore) ListByCustomer(ctx context.Context, customerID string) ([]ConsentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, purpose, granted, granted_at, revoked_at
		FROM consent_records
		WHERE customer_id = $1
		ORDER BY granted_at`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var records []ConsentRecord
	for rows.Next() {
		var record ConsentRecord
		var revokedAt sql.NullTime
		if err := rows.Scan(&record.CustomerID, &record.Purpose, &record.Granted, &record.GrantedAt, &revokedAt); err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		if revokedAt.Valid {
			record.RevokedAt = &revokedAt.Time
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresConsentStore) Revoke(ctx context.Context, customerID string, purpose ConsentPurpose, revokedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE consent_records
		SET revoked_at = $3
		WHERE customer_id = $1 AND purpose = $2 AND revoked_at IS NULL`,
		customerID, purpose, revokedAt)
	if err != nil {
		return fmt.Errorf("revoke consent: %w", err)
	}
	return nil
}
