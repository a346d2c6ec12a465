package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
	"github.com/robwestz/mcp-blcwrtr/pkg/services/workqueue"
)

// BatchItem is one order job in a batch. An item without article text runs
// the preflight stage; one with article text runs the QC stage.
type BatchItem struct {
	OrderRef    string `json:"order_ref"`
	ArticleText string `json:"article_text,omitempty"`
	AutoFix     bool   `json:"auto_fix,omitempty"`
}

// BatchOutcome is the per-order result of a batch run. Commits are atomic
// per order: a partial-failure batch mixes COMPLETED and FAILED outcomes,
// never a whole-batch rollback.
type BatchOutcome struct {
	OrderRef string            `json:"order_ref"`
	Result   string            `json:"result"` // "COMPLETED" or "FAILED"
	State    models.OrderState `json:"state,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchResult aggregates one batch run.
type BatchResult struct {
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	Outcomes  []BatchOutcome `json:"outcomes"`
}

// PipelineService drives full order pipelines: the preflight stage
// (PENDING -> PREFLIGHT -> WRITING) and the QC stage (WRITING -> QC ->
// APPROVED | WRITING | FAILED). A worker owns its order exclusively via
// the lease for the duration of a stage; within one order all steps are
// strictly sequential.
type PipelineService interface {
	RunPreflight(ctx context.Context, orderRef string) (*PreflightResult, error)
	RunQC(ctx context.Context, orderRef, articleText string, autoFix bool) (*models.ValidationReport, string, error)
	ProcessBatch(ctx context.Context, items []BatchItem) *BatchResult
}

type pipelineService struct {
	orders    repositories.OrderRepository
	orderSvc  OrderService
	preflight PreflightService
	qc        QCService
	pool      *workqueue.Pool
	leaseTTL  time.Duration
	logger    *zap.Logger
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(
	orders repositories.OrderRepository,
	orderSvc OrderService,
	preflight PreflightService,
	qc QCService,
	pool *workqueue.Pool,
	leaseTTL time.Duration,
	logger *zap.Logger,
) PipelineService {
	if leaseTTL <= 0 {
		leaseTTL = 5 * time.Minute
	}
	return &pipelineService{
		orders:    orders,
		orderSvc:  orderSvc,
		preflight: preflight,
		qc:        qc,
		pool:      pool,
		leaseTTL:  leaseTTL,
		logger:    logger.Named("pipeline"),
	}
}

var _ PipelineService = (*pipelineService)(nil)

func (s *pipelineService) RunPreflight(ctx context.Context, orderRef string) (*PreflightResult, error) {
	owner := uuid.NewString()
	if err := s.orders.AcquireLease(ctx, orderRef, owner, s.leaseTTL); err != nil {
		return nil, err
	}
	defer s.releaseLease(orderRef, owner)

	if _, err := s.orderSvc.Advance(ctx, orderRef, models.OrderStatePreflight); err != nil {
		return nil, err
	}

	result, err := s.preflight.Build(ctx, orderRef)
	if err != nil {
		if _, ferr := s.orderSvc.Advance(ctx, orderRef, models.OrderStateFailed); ferr != nil {
			s.logger.Error("failed to record preflight failure",
				zap.String("order_ref", orderRef), zap.Error(ferr))
		}
		return nil, err
	}

	if _, err := s.orderSvc.Advance(ctx, orderRef, models.OrderStateWriting); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *pipelineService) RunQC(ctx context.Context, orderRef, articleText string, autoFix bool) (*models.ValidationReport, string, error) {
	owner := uuid.NewString()
	if err := s.orders.AcquireLease(ctx, orderRef, owner, s.leaseTTL); err != nil {
		return nil, "", err
	}
	defer s.releaseLease(orderRef, owner)

	if _, err := s.orderSvc.Advance(ctx, orderRef, models.OrderStateQC); err != nil {
		return nil, "", err
	}

	report, finalText, err := s.qc.Validate(ctx, orderRef, articleText, autoFix)
	if err != nil {
		if _, ferr := s.orderSvc.Advance(ctx, orderRef, models.OrderStateFailed); ferr != nil {
			s.logger.Error("failed to record qc failure",
				zap.String("order_ref", orderRef), zap.Error(ferr))
		}
		return nil, "", err
	}

	var next models.OrderState
	switch report.Status {
	case models.StatusApproved:
		next = models.OrderStateApproved
	case models.StatusLightEdits:
		next = models.OrderStateWriting
	default:
		next = models.OrderStateFailed
	}
	if _, err := s.orderSvc.Advance(ctx, orderRef, next); err != nil {
		return nil, "", err
	}
	return report, finalText, nil
}

// ProcessBatch runs each item's pipeline stage on the bounded pool.
// Outcomes are sorted by order ref for stable reporting.
func (s *pipelineService) ProcessBatch(ctx context.Context, items []BatchItem) *BatchResult {
	jobs := make([]workqueue.Job[models.OrderState], 0, len(items))
	for _, item := range items {
		item := item
		jobs = append(jobs, workqueue.Job[models.OrderState]{
			ID: item.OrderRef,
			Execute: func(ctx context.Context) (models.OrderState, error) {
				if item.ArticleText == "" {
					if _, err := s.RunPreflight(ctx, item.OrderRef); err != nil {
						return "", err
					}
				} else {
					if _, _, err := s.RunQC(ctx, item.OrderRef, item.ArticleText, item.AutoFix); err != nil {
						return "", err
					}
				}
				order, err := s.orders.GetByRef(ctx, item.OrderRef)
				if err != nil {
					return "", err
				}
				return order.State, nil
			},
		})
	}

	result := &BatchResult{}
	for _, jr := range workqueue.Process(ctx, s.pool, jobs) {
		outcome := BatchOutcome{OrderRef: jr.ID, State: jr.Result}
		if jr.Err != nil {
			outcome.Result = "FAILED"
			outcome.Error = jr.Err.Error()
			result.Failed++
		} else {
			outcome.Result = "COMPLETED"
			result.Completed++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].OrderRef < result.Outcomes[j].OrderRef
	})

	s.logger.Info("batch processed",
		zap.Int("completed", result.Completed),
		zap.Int("failed", result.Failed))
	return result
}

func (s *pipelineService) releaseLease(orderRef, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.orders.ReleaseLease(ctx, orderRef, owner); err != nil {
		s.logger.Warn("lease release failed",
			zap.String("order_ref", orderRef),
			zap.Error(fmt.Errorf("release: %w", err)))
	}
}
