// Package postgres implements the audit store on PostgreSQL using the
// transactional outbox pattern: every event is written to the
// compliance_events table and mirrored into audit_outbox, from which the
// Kafka publisher drains rows. Kafka consumers downstream treat the topic
// as the source of truth for the audit stream.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "crosspay/pkg/platform/audit"
)

// Store implements audit.Store on *sql.DB.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka. Field names are
// part of the consumer contract; do not rename casually.
type outboxPayload struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Rule       string         `json:"compliance_rule"`
	Status     string         `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	RiskScore  *int           `json:"risk_score,omitempty"`
	ReviewedBy string         `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Append writes the event and its outbox row in one transaction.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal event details: %w", err)
	}

	payload, err := json.Marshal(outboxPayload{
		ID:         eventID.String(),
		EventType:  string(event.EventType),
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Rule:       event.Rule,
		Status:     string(event.Status),
		Details:    event.Details,
		RiskScore:  event.RiskScore,
		ReviewedBy: event.ReviewedBy,
		ReviewedAt: event.ReviewedAt,
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO compliance_events
			(id, event_type, entity_type, entity_id, compliance_rule, status, details, risk_score, reviewed_by, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		eventID, event.EventType, event.EntityType, event.EntityID, event.Rule,
		event.Status, details, event.RiskScore, nullString(event.ReviewedBy),
		event.ReviewedAt, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert compliance event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, payload, created_at)
		VALUES ($1, $2, $3)`,
		eventID, payload, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}

	return tx.Commit()
}

// ListByPeriod returns events with created_at in [start, end).
func (s *Store) ListByPeriod(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, entity_type, entity_id, compliance_rule, status, details, risk_score, reviewed_by, reviewed_at, created_at
		FROM compliance_events
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query compliance events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListFlagged returns events in the period with risk_score >= minRisk.
func (s *Store) ListFlagged(ctx context.Context, start, end time.Time, minRisk int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, entity_type, entity_id, compliance_rule, status, details, risk_score, reviewed_by, reviewed_at, created_at
		FROM compliance_events
		WHERE created_at >= $1 AND created_at < $2 AND risk_score >= $3
		ORDER BY risk_score DESC, created_at`,
		start, end, minRisk,
	)
	if err != nil {
		return nil, fmt.Errorf("query flagged events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// PendingOutbox returns up to limit unpublished outbox rows, oldest first.
func (s *Store) PendingOutbox(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkPublished stamps outbox rows after a successful Kafka produce.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox SET published_at = now()
		WHERE id = ANY($1::uuid[])`,
		pq.Array(strs),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// OutboxRow is one unpublished audit payload.
type OutboxRow struct {
	ID      uuid.UUID
	Payload []byte
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var out []audit.Event
	for rows.Next() {
		var (
			event      audit.Event
			details    []byte
			riskScore  sql.NullInt64
			reviewedBy sql.NullString
			reviewedAt sql.NullTime
		)
		if err := rows.Scan(&event.EventType, &event.EntityType, &event.EntityID,
			&event.Rule, &event.Status, &details, &riskScore, &reviewedBy, &reviewedAt,
			&event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan compliance event: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal event details: %w", err)
			}
		}
		if riskScore.Valid {
			score := int(riskScore.Int64)
			event.RiskScore = &score
		}
		if reviewedBy.Valid {
			event.ReviewedBy = reviewedBy.String
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			event.ReviewedAt = &t
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
