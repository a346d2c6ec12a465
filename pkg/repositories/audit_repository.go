package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robwestz/mcp-blcwrtr/pkg/database"
)

// AuditEntry is one pipeline step outcome recorded for an order.
type AuditEntry struct {
	OrderRef string         `json:"order_ref"`
	Step     string         `json:"step"`   // "preflight", "draft", "qc", "transition"
	Status   string         `json:"status"` // "ok", "failed", "skipped"
	Payload  map[string]any `json:"payload,omitempty"`
	TS       time.Time      `json:"ts"`
}

// AuditRepository appends pipeline step records. Best-effort trail; callers
// log append failures but never fail the step over them.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListByOrderRef(ctx context.Context, orderRef string, limit int) ([]*AuditEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Append(ctx context.Context, entry *AuditEntry) error {
	var payload []byte
	if entry.Payload != nil {
		var err error
		payload, err = json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_log (order_ref, step, status, payload)
		VALUES ($1, $2, $3, $4)`,
		entry.OrderRef, entry.Step, entry.Status, payload)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByOrderRef(ctx context.Context, orderRef string, limit int) ([]*AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_ref, step, status, payload, ts
		FROM audit_log
		WHERE order_ref = $1
		ORDER BY ts DESC
		LIMIT $2`, orderRef, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for %s: %w", orderRef, err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		e := &AuditEntry{}
		var payload []byte
		if err := rows.Scan(&e.OrderRef, &e.Step, &e.Status, &payload, &e.TS); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
