package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
)

// ============================================================================
// In-memory fakes
// ============================================================================

// fakeOrderRepo is safe for concurrent use; the batch pipeline runs its
// jobs on a worker pool.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	leases map[string]string
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{
		orders: make(map[string]*models.Order),
		leases: make(map[string]string),
	}
	for _, o := range orders {
		cp := *o
		r.orders[o.OrderRef] = &cp
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.OrderRef]; ok {
		return apperrors.ErrConflict
	}
	cp := *order
	r.orders[order.OrderRef] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByRef(_ context.Context, orderRef string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderRef]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) ListByState(_ context.Context, state models.OrderState, limit int) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Order
	for _, o := range r.orders {
		if o.State == state && len(out) < limit {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateState(_ context.Context, orderRef string, from, to models.OrderState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderRef]
	if !ok {
		return apperrors.ErrNotFound
	}
	if o.State == to {
		return nil
	}
	if o.State != from {
		return apperrors.ErrConflict
	}
	o.State = to
	return nil
}

func (r *fakeOrderRepo) AcquireLease(_ context.Context, orderRef, owner string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, ok := r.leases[orderRef]; ok && holder != owner {
		return apperrors.ErrOrderLocked
	}
	r.leases[orderRef] = owner
	return nil
}

func (r *fakeOrderRepo) ReleaseLease(_ context.Context, orderRef, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.leases[orderRef] == owner {
		delete(r.leases, orderRef)
	}
	return nil
}

type fakeReportRepo struct {
	mu     sync.Mutex
	latest map[string]*models.ValidationReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{latest: make(map[string]*models.ValidationReport)}
}

func (r *fakeReportRepo) Save(_ context.Context, orderRef string, report *models.ValidationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *report
	r.latest[orderRef] = &cp
	return nil
}

func (r *fakeReportRepo) LatestByOrderRef(_ context.Context, orderRef string) (*models.ValidationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.latest[orderRef]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*repositories.AuditEntry
}

func (r *fakeAuditRepo) Append(_ context.Context, entry *repositories.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByOrderRef(_ context.Context, orderRef string, limit int) ([]*repositories.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*repositories.AuditEntry
	for _, e := range r.entries {
		if e.OrderRef == orderRef && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func testOrder(state models.OrderState) *models.Order {
	return &models.Order{
		OrderRef:          "ORD-2001",
		CustomerID:        "cust-7",
		PublicationDomain: "slaktforskarbloggen.se",
		TargetURL:         "https://slaktforskarna.se/dna",
		AnchorText:        "dna-test för släktforskning",
		Topic:             "släktforskning med dna",
		State:             state,
	}
}

func newOrderServiceForTest(orders repositories.OrderRepository, reports repositories.ReportRepository) (OrderService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	return NewOrderService(orders, reports, audit, zap.NewNop()), audit
}

// ============================================================================
// Tests
// ============================================================================

func TestAdvanceFollowsLegalTransitions(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(models.OrderStatePending))
	svc, audit := newOrderServiceForTest(repo, newFakeReportRepo())
	ctx := context.Background()

	order, err := svc.Advance(ctx, "ORD-2001", models.OrderStatePreflight)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatePreflight, order.State)

	order, err = svc.Advance(ctx, "ORD-2001", models.OrderStateWriting)
	require.NoError(t, err)
	require.Equal(t, models.OrderStateWriting, order.State)

	require.Len(t, audit.entries, 2)
	require.Equal(t, "transition", audit.entries[0].Step)
	require.Equal(t, map[string]any{"from": "PENDING", "to": "PREFLIGHT"}, audit.entries[0].Payload)
}

func TestAdvanceRejectsIllegalTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.OrderState
		to   models.OrderState
	}{
		{"pending cannot skip to delivered", models.OrderStatePending, models.OrderStateDelivered},
		{"failed re-enters only through pending", models.OrderStateFailed, models.OrderStatePreflight},
		{"delivered is terminal", models.OrderStateDelivered, models.OrderStatePending},
		{"cancelled is terminal", models.OrderStateCancelled, models.OrderStatePreflight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo(testOrder(tt.from))
			svc, _ := newOrderServiceForTest(repo, newFakeReportRepo())

			_, err := svc.Advance(context.Background(), "ORD-2001", tt.to)
			require.ErrorIs(t, err, apperrors.ErrIllegalTransition)

			stored, err := repo.GetByRef(context.Background(), "ORD-2001")
			require.NoError(t, err)
			require.Equal(t, tt.from, stored.State)
		})
	}
}

func TestAdvanceToCurrentStateIsNoOp(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(models.OrderStateWriting))
	svc, audit := newOrderServiceForTest(repo, newFakeReportRepo())

	order, err := svc.Advance(context.Background(), "ORD-2001", models.OrderStateWriting)
	require.NoError(t, err)
	require.Equal(t, models.OrderStateWriting, order.State)
	require.Empty(t, audit.entries)
}

func TestAdvanceRejectsUnknownState(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(models.OrderStatePending))
	svc, _ := newOrderServiceForTest(repo, newFakeReportRepo())

	_, err := svc.Advance(context.Background(), "ORD-2001", models.OrderState("SHIPPED"))
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestAdvanceUnknownOrder(t *testing.T) {
	svc, _ := newOrderServiceForTest(newFakeOrderRepo(), newFakeReportRepo())

	_, err := svc.Advance(context.Background(), "ORD-MISSING", models.OrderStatePreflight)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAdvanceOutOfQCRequiresApprovedReport(t *testing.T) {
	ctx := context.Background()

	t.Run("no report blocks approval", func(t *testing.T) {
		repo := newFakeOrderRepo(testOrder(models.OrderStateQC))
		svc, _ := newOrderServiceForTest(repo, newFakeReportRepo())

		_, err := svc.Advance(ctx, "ORD-2001", models.OrderStateApproved)
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("no report still permits failing the order", func(t *testing.T) {
		repo := newFakeOrderRepo(testOrder(models.OrderStateQC))
		svc, _ := newOrderServiceForTest(repo, newFakeReportRepo())

		order, err := svc.Advance(ctx, "ORD-2001", models.OrderStateFailed)
		require.NoError(t, err)
		require.Equal(t, models.OrderStateFailed, order.State)
	})

	t.Run("blocked report rejects approval", func(t *testing.T) {
		repo := newFakeOrderRepo(testOrder(models.OrderStateQC))
		reports := newFakeReportRepo()
		require.NoError(t, reports.Save(ctx, "ORD-2001", &models.ValidationReport{Status: models.StatusBlocked}))
		svc, _ := newOrderServiceForTest(repo, reports)

		_, err := svc.Advance(ctx, "ORD-2001", models.OrderStateApproved)
		require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	})

	t.Run("approved report permits approval", func(t *testing.T) {
		repo := newFakeOrderRepo(testOrder(models.OrderStateQC))
		reports := newFakeReportRepo()
		require.NoError(t, reports.Save(ctx, "ORD-2001", &models.ValidationReport{Status: models.StatusApproved}))
		svc, _ := newOrderServiceForTest(repo, reports)

		order, err := svc.Advance(ctx, "ORD-2001", models.OrderStateApproved)
		require.NoError(t, err)
		require.Equal(t, models.OrderStateApproved, order.State)
	})

	t.Run("light edits routes back to writing", func(t *testing.T) {
		repo := newFakeOrderRepo(testOrder(models.OrderStateQC))
		reports := newFakeReportRepo()
		require.NoError(t, reports.Save(ctx, "ORD-2001", &models.ValidationReport{Status: models.StatusLightEdits}))
		svc, _ := newOrderServiceForTest(repo, reports)

		order, err := svc.Advance(ctx, "ORD-2001", models.OrderStateWriting)
		require.NoError(t, err)
		require.Equal(t, models.OrderStateWriting, order.State)

		_, err = svc.Advance(ctx, "ORD-2001", models.OrderStateQC)
		require.NoError(t, err)
	})
}

func TestCreateRejectsDuplicateRef(t *testing.T) {
	svc, _ := newOrderServiceForTest(newFakeOrderRepo(), newFakeReportRepo())
	ctx := context.Background()

	order := testOrder(models.OrderStatePending)
	require.NoError(t, svc.Create(ctx, order))
	require.ErrorIs(t, svc.Create(ctx, order), apperrors.ErrConflict)
}
