package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/database"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// OrderRepository provides data access for orders, including the
// exclusive worker lease used by the batch pipeline.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByRef(ctx context.Context, orderRef string) (*models.Order, error)
	ListByState(ctx context.Context, state models.OrderState, limit int) ([]*models.Order, error)

	// UpdateState moves an order from one recorded state to another.
	// Re-applying a transition already recorded is a no-op; a mismatch with
	// any other state returns ErrConflict.
	UpdateState(ctx context.Context, orderRef string, from, to models.OrderState) error

	// AcquireLease takes the exclusive per-order lease for a worker.
	// Returns ErrOrderLocked when another worker holds an unexpired lease.
	AcquireLease(ctx context.Context, orderRef, owner string, ttl time.Duration) error

	// ReleaseLease drops the lease if the owner still holds it.
	ReleaseLease(ctx context.Context, orderRef, owner string) error
}

type orderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *database.DB) OrderRepository {
	return &orderRepository{db: db}
}

var _ OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	constraints, err := json.Marshal(order.Constraints)
	if err != nil {
		return fmt.Errorf("marshal order constraints: %w", err)
	}

	query := `
		INSERT INTO orders (
			order_ref, customer_id, publication_domain, target_url,
			anchor_text, topic, locale, constraints, state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	state := order.State
	if state == "" {
		state = models.OrderStatePending
	}

	err = r.db.QueryRow(ctx, query,
		order.OrderRef,
		order.CustomerID,
		order.PublicationDomain,
		order.TargetURL,
		order.AnchorText,
		order.Topic,
		order.Locale,
		constraints,
		state,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.State = state
	return nil
}

func (r *orderRepository) GetByRef(ctx context.Context, orderRef string) (*models.Order, error) {
	query := `
		SELECT id, order_ref, customer_id, publication_domain, target_url,
		       anchor_text, topic, locale, constraints, state, created_at, updated_at
		FROM orders
		WHERE order_ref = $1`

	order := &models.Order{}
	var constraints []byte
	err := r.db.QueryRow(ctx, query, orderRef).Scan(
		&order.ID,
		&order.OrderRef,
		&order.CustomerID,
		&order.PublicationDomain,
		&order.TargetURL,
		&order.AnchorText,
		&order.Topic,
		&order.Locale,
		&constraints,
		&order.State,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderRef, err)
	}

	if err := json.Unmarshal(constraints, &order.Constraints); err != nil {
		return nil, fmt.Errorf("unmarshal order constraints: %w", err)
	}
	return order, nil
}

func (r *orderRepository) ListByState(ctx context.Context, state models.OrderState, limit int) ([]*models.Order, error) {
	query := `
		SELECT id, order_ref, customer_id, publication_domain, target_url,
		       anchor_text, topic, locale, constraints, state, created_at, updated_at
		FROM orders
		WHERE state = $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, state, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders in state %s: %w", state, err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var constraints []byte
		if err := rows.Scan(
			&order.ID,
			&order.OrderRef,
			&order.CustomerID,
			&order.PublicationDomain,
			&order.TargetURL,
			&order.AnchorText,
			&order.Topic,
			&order.Locale,
			&constraints,
			&order.State,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal(constraints, &order.Constraints); err != nil {
			return nil, fmt.Errorf("unmarshal order constraints: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) UpdateState(ctx context.Context, orderRef string, from, to models.OrderState) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET state = $3, updated_at = now()
		WHERE order_ref = $1 AND state = $2`,
		orderRef, from, to)
	if err != nil {
		return fmt.Errorf("failed to update order state: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Replay check: transition already recorded is a no-op.
	var current models.OrderState
	err = r.db.QueryRow(ctx, `SELECT state FROM orders WHERE order_ref = $1`, orderRef).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read order state: %w", err)
	}
	if current == to {
		return nil
	}
	return fmt.Errorf("order %s is in state %s, expected %s: %w",
		orderRef, current, from, apperrors.ErrConflict)
}

func (r *orderRepository) AcquireLease(ctx context.Context, orderRef, owner string, ttl time.Duration) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET lease_owner = $2, lease_expires_at = now() + make_interval(secs => $3)
		WHERE order_ref = $1
		  AND (lease_owner IS NULL OR lease_owner = $2 OR lease_expires_at < now())`,
		orderRef, owner, ttl.Seconds())
	if err != nil {
		return fmt.Errorf("failed to acquire lease for %s: %w", orderRef, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOrderLocked
	}
	return nil
}

func (r *orderRepository) ReleaseLease(ctx context.Context, orderRef, owner string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders
		SET lease_owner = NULL, lease_expires_at = NULL
		WHERE order_ref = $1 AND lease_owner = $2`,
		orderRef, owner)
	if err != nil {
		return fmt.Errorf("failed to release lease for %s: %w", orderRef, err)
	}
	return nil
}
