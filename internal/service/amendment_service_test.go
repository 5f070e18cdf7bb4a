package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"order-amendment-service/internal/models"
	"order-amendment-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory AmendmentStore for commit-path tests.
type fakeStore struct {
	order    *models.Order
	lines    []models.OrderLine
	rows     map[int64]*models.CatalogRow
	applyErr error
	applied  []*store.AmendmentPlan
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		order: testOrder(),
		lines: testLines(),
		rows: map[int64]*models.CatalogRow{
			101: {ID: 101, CafeID: 7, Name: "Paneer Tikka Masala (Half)", Price: 100, InStock: true, Active: true},
			102: {ID: 102, CafeID: 7, Name: "Butter Naan", Price: 50, InStock: true, Active: true},
			103: {ID: 103, CafeID: 7, Name: "Gulab Jamun", Price: 80, InStock: true, Active: true},
			104: {ID: 104, CafeID: 7, Name: "Masala Chai (Small)", Price: 20, InStock: false, Active: true},
		},
	}
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	order := *f.order
	return &order, nil
}

func (f *fakeStore) GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	return append([]models.OrderLine(nil), f.lines...), nil
}

func (f *fakeStore) GetCatalogRow(ctx context.Context, id int64) (*models.CatalogRow, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("catalog row not found: %d", id)
	}
	out := *row
	return &out, nil
}

func (f *fakeStore) GetEditLog(ctx context.Context, orderID int64) ([]models.EditLogEntry, error) {
	return nil, nil
}

func (f *fakeStore) ApplyAmendment(ctx context.Context, plan *store.AmendmentPlan) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, plan)
	return nil
}

func newTestService(f *fakeStore) *AmendmentService {
	return NewAmendmentService(f, NewSessionManager(time.Hour), nil)
}

func TestOpenSessionRequiresStaffID(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.OpenSession(context.Background(), 10, 0)
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestOpenSessionIneligibleOrder(t *testing.T) {
	f := newFakeStore()
	f.order.Status = models.OrderStatusCompleted
	svc := newTestService(f)

	_, err := svc.OpenSession(context.Background(), 10, 99)
	assert.ErrorIs(t, err, ErrIneligibleOrder)
	assert.Empty(t, f.applied)
}

func TestOpenSessionPrepaidOrder(t *testing.T) {
	f := newFakeStore()
	f.order.Settlement = models.SettlementPrepaid
	svc := newTestService(f)

	_, err := svc.OpenSession(context.Background(), 10, 99)
	assert.ErrorIs(t, err, ErrIneligibleOrder)
}

func TestAddItemRejectsOutOfStockRow(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	sess, err := svc.OpenSession(context.Background(), 10, 99)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), sess.ID, 104)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCommitScenario(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)

	// Raise the paneer to 3, drop the naan, add a gulab jamun.
	require.NoError(t, svc.SetQuantity(sess.ID, 1, 3))
	require.NoError(t, svc.RemoveLine(sess.ID, 2))
	_, err = svc.AddItem(ctx, sess.ID, 103)
	require.NoError(t, err)

	preview, err := svc.PreviewSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.AddedCount)
	assert.Equal(t, 1, preview.RemovedCount)
	assert.Equal(t, 1, preview.ChangedCount)
	assert.Equal(t, int64(250), preview.OldTotal)
	assert.Equal(t, int64(380), preview.NewTotal)

	result, err := svc.Commit(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(380), result.NewTotal)
	assert.Equal(t, 3, result.LedgerCount)

	require.Len(t, f.applied, 1)
	plan := f.applied[0]
	assert.Equal(t, int64(10), plan.OrderID)
	assert.Equal(t, models.OrderStatusReceived, plan.ExpectedStatus)
	assert.Equal(t, models.SettlementCashOnDelivery, plan.ExpectedSettlement)
	assert.Equal(t, int64(250), plan.ExpectedTotal)
	assert.Equal(t, int64(380), plan.NewTotal)
	assert.Equal(t, []int64{2}, plan.DeleteLineIDs)

	require.Len(t, plan.UpdateLines, 1)
	assert.Equal(t, int64(1), plan.UpdateLines[0].ID)
	assert.Equal(t, 3, plan.UpdateLines[0].Quantity)
	assert.Equal(t, int64(300), plan.UpdateLines[0].LineTotal)

	require.Len(t, plan.InsertLines, 1)
	assert.Equal(t, int64(103), plan.InsertLines[0].CatalogRowID)
	assert.Equal(t, int64(80), plan.InsertLines[0].LineTotal)

	require.Len(t, plan.LedgerEntries, 3)
	for _, entry := range plan.LedgerEntries {
		assert.Equal(t, int64(380), entry.NewOrderTotal)
		assert.Equal(t, int64(250), entry.OldOrderTotal)
	}

	// The session is discarded after a successful commit.
	_, err = svc.GetSession(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitEmptySession(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveLine(sess.ID, 1))
	require.NoError(t, svc.RemoveLine(sess.ID, 2))

	_, err = svc.Commit(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrEmptySession)

	// No persistence calls were made and the session is still open.
	assert.Empty(t, f.applied)
	_, err = svc.GetSession(sess.ID)
	assert.NoError(t, err)
}

func TestCommitNoChangesSkipsPersistence(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)

	result, err := svc.Commit(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.LedgerCount)
	assert.Empty(t, f.applied)

	_, err = svc.GetSession(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitConflictLeavesSessionOpen(t *testing.T) {
	f := newFakeStore()
	f.applyErr = fmt.Errorf("%w: order 10 is COMPLETED/CASH_ON_DELIVERY/total=250", store.ErrStaleOrder)
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)
	require.NoError(t, svc.SetQuantity(sess.ID, 1, 3))

	_, err = svc.Commit(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// A conflict forces a reseed; the stale session must not be merged.
	_, err = svc.GetSession(sess.ID)
	assert.NoError(t, err)
}

func TestCommitPartialFailureIsDistinguishable(t *testing.T) {
	f := newFakeStore()
	f.applyErr = &store.PartialCommitError{OrderID: 10, Step: "commit", Err: errors.New("connection reset")}
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)
	require.NoError(t, svc.SetQuantity(sess.ID, 1, 3))

	_, err = svc.Commit(ctx, sess.ID)
	require.Error(t, err)

	var partial *store.PartialCommitError
	assert.ErrorAs(t, err, &partial)
	assert.NotErrorIs(t, err, ErrConflict)

	_, err = svc.GetSession(sess.ID)
	assert.NoError(t, err)
}

func TestCommitPlainPersistenceFailure(t *testing.T) {
	f := newFakeStore()
	f.applyErr = errors.New("failed to update line 1: connection refused")
	svc := newTestService(f)
	ctx := context.Background()

	sess, err := svc.OpenSession(ctx, 10, 99)
	require.NoError(t, err)
	require.NoError(t, svc.SetQuantity(sess.ID, 1, 3))

	_, err = svc.Commit(ctx, sess.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)

	var partial *store.PartialCommitError
	assert.False(t, errors.As(err, &partial))
}

func TestDiscardSession(t *testing.T) {
	svc := newTestService(newFakeStore())

	sess, err := svc.OpenSession(context.Background(), 10, 99)
	require.NoError(t, err)

	require.NoError(t, svc.DiscardSession(sess.ID))
	_, err = svc.GetSession(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.DiscardSession(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
