package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
)

// OrderService owns the order lifecycle. Transitions are the sole state
// mutator; anything outside the legal table is rejected, never coerced.
type OrderService interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, orderRef string) (*models.Order, error)

	// Advance moves an order to the requested state. Re-requesting the
	// current state is an idempotent no-op. QC exits are gated on the
	// latest validation report.
	Advance(ctx context.Context, orderRef string, to models.OrderState) (*models.Order, error)
}

type orderService struct {
	orders  repositories.OrderRepository
	reports repositories.ReportRepository
	audit   repositories.AuditRepository
	logger  *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repositories.OrderRepository,
	reports repositories.ReportRepository,
	audit repositories.AuditRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:  orders,
		reports: reports,
		audit:   audit,
		logger:  logger.Named("orders"),
	}
}

var _ OrderService = (*orderService)(nil)

func (s *orderService) Create(ctx context.Context, order *models.Order) error {
	if err := s.orders.Create(ctx, order); err != nil {
		return err
	}
	s.logger.Info("order accepted",
		zap.String("order_ref", order.OrderRef),
		zap.String("publication_domain", order.PublicationDomain))
	return nil
}

func (s *orderService) Get(ctx context.Context, orderRef string) (*models.Order, error) {
	return s.orders.GetByRef(ctx, orderRef)
}

func (s *orderService) Advance(ctx context.Context, orderRef string, to models.OrderState) (*models.Order, error) {
	if !models.IsValidOrderState(to) {
		return nil, fmt.Errorf("unknown order state %q: %w", to, apperrors.ErrIllegalTransition)
	}

	order, err := s.orders.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	// Replaying an already-recorded transition is a no-op.
	if order.State == to {
		return order, nil
	}

	if !models.CanTransition(order.State, to) {
		return nil, fmt.Errorf("order %s: %s -> %s: %w",
			orderRef, order.State, to, apperrors.ErrIllegalTransition)
	}

	if order.State == models.OrderStateQC {
		if err := s.gateQCExit(ctx, orderRef, to); err != nil {
			return nil, err
		}
	}

	if err := s.orders.UpdateState(ctx, orderRef, order.State, to); err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, &repositories.AuditEntry{
		OrderRef: orderRef,
		Step:     "transition",
		Status:   "ok",
		Payload:  map[string]any{"from": string(order.State), "to": string(to)},
	}); err != nil {
		s.logger.Warn("audit append failed", zap.String("order_ref", orderRef), zap.Error(err))
	}

	s.logger.Info("order transitioned",
		zap.String("order_ref", orderRef),
		zap.String("from", string(order.State)),
		zap.String("to", string(to)))

	order.State = to
	return order, nil
}

// gateQCExit enforces the report requirements on transitions out of QC:
// APPROVED needs an approving report, WRITING needs LIGHT_EDITS, and a
// BLOCKED report only permits FAILED.
func (s *orderService) gateQCExit(ctx context.Context, orderRef string, to models.OrderState) error {
	report, err := s.reports.LatestByOrderRef(ctx, orderRef)
	if errors.Is(err, apperrors.ErrNotFound) {
		if to == models.OrderStateFailed {
			return nil
		}
		return fmt.Errorf("order %s has no validation report: %w", orderRef, apperrors.ErrConflict)
	}
	if err != nil {
		return err
	}

	switch to {
	case models.OrderStateApproved:
		if report.Status != models.StatusApproved {
			return fmt.Errorf("latest report is %s, APPROVED required: %w",
				report.Status, apperrors.ErrIllegalTransition)
		}
	case models.OrderStateWriting:
		if report.Status != models.StatusLightEdits {
			return fmt.Errorf("latest report is %s, LIGHT_EDITS required: %w",
				report.Status, apperrors.ErrIllegalTransition)
		}
	}
	return nil
}
