package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-amendment-service/internal/models"
	"order-amendment-service/internal/store"
	"order-amendment-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AmendmentStore is the persistence surface the amendment engine needs.
// *store.Store satisfies it.
type AmendmentStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	GetCatalogRow(ctx context.Context, id int64) (*models.CatalogRow, error)
	GetEditLog(ctx context.Context, orderID int64) ([]models.EditLogEntry, error)
	ApplyAmendment(ctx context.Context, plan *store.AmendmentPlan) error
}

// AmendmentPublisher publishes committed amendments for downstream
// consumers. It is invoked only after the commit is durable.
type AmendmentPublisher interface {
	PublishOrderAmended(ctx context.Context, event *models.OrderAmendedEvent) error
}

// AmendmentService owns the edit-session lifecycle and the
// reconciliation commit for cash-on-delivery orders.
type AmendmentService struct {
	store     AmendmentStore
	sessions  *SessionManager
	publisher AmendmentPublisher
	logger    *zap.Logger
}

// NewAmendmentService creates a new amendment service
func NewAmendmentService(st AmendmentStore, sessions *SessionManager, publisher AmendmentPublisher) *AmendmentService {
	return &AmendmentService{
		store:     st,
		sessions:  sessions,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Preview summarizes the pending diff so staff can confirm before the
// commit is attempted.
type Preview struct {
	SessionID    string `json:"session_id"`
	OrderID      int64  `json:"order_id"`
	AddedCount   int    `json:"added_count"`
	RemovedCount int    `json:"removed_count"`
	ChangedCount int    `json:"changed_count"`
	OldTotal     int64  `json:"old_total"`
	NewTotal     int64  `json:"new_total"`
}

// CommitResult reports the outcome of a successful commit.
type CommitResult struct {
	OrderID      int64 `json:"order_id"`
	AddedCount   int   `json:"added_count"`
	RemovedCount int   `json:"removed_count"`
	ChangedCount int   `json:"changed_count"`
	LedgerCount  int   `json:"ledger_count"`
	NewTotal     int64 `json:"new_total"`
}

// OpenSession seeds a new edit session from the order's persisted
// lines. Eligibility is checked here and re-checked at commit, since
// the order can change in between.
func (s *AmendmentService) OpenSession(ctx context.Context, orderID, staffID int64) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "AmendmentService.OpenSession")
	defer span.End()

	if staffID <= 0 {
		return nil, &ValidationError{Field: "staff_id", Reason: "acting-staff identity is required"}
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := CheckEligibility(order.Status, order.Settlement); err != nil {
		util.AmendmentsRejectedTotal.WithLabelValues("ineligible").Inc()
		return nil, err
	}

	lines, err := s.store.GetOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	sess := s.sessions.Open(order, lines, staffID)
	util.SessionsOpenedTotal.Inc()
	util.EditSessionsOpen.Set(float64(s.sessions.Len()))

	s.logger.Info("Edit session opened",
		zap.String("session_id", sess.ID),
		zap.Int64("order_id", orderID),
		zap.Int64("staff_id", staffID),
		zap.Int("lines", len(lines)))

	return sess, nil
}

// GetSession returns an open session by ID.
func (s *AmendmentService) GetSession(sessionID string) (*Session, error) {
	return s.sessions.Get(sessionID)
}

// AddItem adds one unit of a catalog row to the session's working copy.
// The row's current price and display name are taken from the catalog,
// never from the caller.
func (s *AmendmentService) AddItem(ctx context.Context, sessionID string, catalogRowID int64) (WorkingLine, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return WorkingLine{}, err
	}

	row, err := s.store.GetCatalogRow(ctx, catalogRowID)
	if err != nil {
		return WorkingLine{}, err
	}
	if !row.Active || !row.InStock {
		return WorkingLine{}, &ValidationError{Field: "catalog_row_id", Reason: "item is not available"}
	}

	return sess.AddCatalogItem(row.ID, row.Price, row.Name), nil
}

// SetQuantity updates a working line's quantity; zero or less removes
// the line.
func (s *AmendmentService) SetQuantity(sessionID string, handle int64, quantity int) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.SetQuantity(handle, quantity)
}

// RemoveLine removes a working line from the session.
func (s *AmendmentService) RemoveLine(sessionID string, handle int64) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.RemoveLine(handle)
}

// PreviewSession classifies the session's pending edits without
// committing them.
func (s *AmendmentService) PreviewSession(sessionID string) (*Preview, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	diff, err := Classify(sess)
	if err != nil {
		return nil, err
	}

	return &Preview{
		SessionID:    sess.ID,
		OrderID:      sess.OrderID,
		AddedCount:   len(diff.Added),
		RemovedCount: len(diff.Removed),
		ChangedCount: len(diff.Changed),
		OldTotal:     sess.SeededTotal(),
		NewTotal:     sess.ComputeTotal(),
	}, nil
}

// Commit reconciles persisted state with the session's working copy.
// The store re-reads the order under lock and rejects the commit if
// status, settlement or total drifted since seeding; the session is
// left intact on any failure so the caller can retry or abandon it.
func (s *AmendmentService) Commit(ctx context.Context, sessionID string) (*CommitResult, error) {
	ctx, span := util.StartSpan(ctx, "AmendmentService.Commit")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CommitLatency.Observe(time.Since(start).Seconds())
	}()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	diff, err := Classify(sess)
	if err != nil {
		util.AmendmentsRejectedTotal.WithLabelValues("empty_session").Inc()
		return nil, err
	}

	newTotal := sess.ComputeTotal()
	result := &CommitResult{
		OrderID:      sess.OrderID,
		AddedCount:   len(diff.Added),
		RemovedCount: len(diff.Removed),
		ChangedCount: len(diff.Changed),
		NewTotal:     newTotal,
	}

	if !diff.HasChanges() {
		// Nothing to reconcile; no persistence calls and no ledger rows.
		s.discard(sess)
		return result, nil
	}

	entries := BuildLedger(sess, diff, time.Now())
	result.LedgerCount = len(entries)

	plan := buildPlan(sess, diff, entries, newTotal)
	if err := s.store.ApplyAmendment(ctx, plan); err != nil {
		return nil, s.commitFailure(sess, err)
	}

	util.AmendmentsCommittedTotal.Inc()
	s.logger.Info("Amendment committed",
		zap.String("session_id", sess.ID),
		zap.Int64("order_id", sess.OrderID),
		zap.Int("added", result.AddedCount),
		zap.Int("removed", result.RemovedCount),
		zap.Int("changed", result.ChangedCount),
		zap.Int64("old_total", sess.SeededTotal()),
		zap.Int64("new_total", newTotal))

	s.discard(sess)
	s.publishAmended(ctx, sess, entries, newTotal)

	return result, nil
}

// DiscardSession abandons an open session without committing.
func (s *AmendmentService) DiscardSession(sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	s.discard(sess)
	util.SessionsDiscardedTotal.Inc()
	return nil
}

// GetEditLog returns the order's append-only amendment history.
func (s *AmendmentService) GetEditLog(ctx context.Context, orderID int64) ([]models.EditLogEntry, error) {
	return s.store.GetEditLog(ctx, orderID)
}

func (s *AmendmentService) discard(sess *Session) {
	s.sessions.Delete(sess.ID)
	util.EditSessionsOpen.Set(float64(s.sessions.Len()))
}

// commitFailure translates store errors into the engine's error kinds.
// The session stays open in every case.
func (s *AmendmentService) commitFailure(sess *Session, err error) error {
	var partial *store.PartialCommitError
	switch {
	case errors.Is(err, store.ErrStaleOrder):
		util.AmendmentsFailedTotal.WithLabelValues("conflict").Inc()
		s.logger.Warn("Commit conflict, session must be reseeded",
			zap.String("session_id", sess.ID),
			zap.Int64("order_id", sess.OrderID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.As(err, &partial):
		util.AmendmentsFailedTotal.WithLabelValues("partial_commit").Inc()
		s.logger.Error("Commit outcome indeterminate",
			zap.String("session_id", sess.ID),
			zap.Int64("order_id", sess.OrderID),
			zap.Error(err))
		return err
	default:
		util.AmendmentsFailedTotal.WithLabelValues("persistence").Inc()
		s.logger.Error("Commit failed",
			zap.String("session_id", sess.ID),
			zap.Int64("order_id", sess.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to apply amendment: %w", err)
	}
}

func (s *AmendmentService) publishAmended(ctx context.Context, sess *Session, entries []models.EditLogEntry, newTotal int64) {
	if s.publisher == nil {
		return
	}

	lines := make([]models.AmendedLineData, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, models.AmendedLineData{
			Action:       e.Action,
			CatalogRowID: e.CatalogRowID,
			DisplayName:  e.DisplayName,
			OldQuantity:  e.OldQuantity,
			NewQuantity:  e.NewQuantity,
			OldUnitPrice: e.OldUnitPrice,
			NewUnitPrice: e.NewUnitPrice,
		})
	}

	event := &models.OrderAmendedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderAmended,
			Timestamp: time.Now(),
		},
		OrderID:       sess.OrderID,
		OrderNumber:   sess.Order().OrderNumber,
		StaffID:       sess.StaffID,
		OldOrderTotal: sess.SeededTotal(),
		NewOrderTotal: newTotal,
		Lines:         lines,
	}

	if err := s.publisher.PublishOrderAmended(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderAmended event",
			zap.Int64("order_id", sess.OrderID),
			zap.Error(err))
	}
}

// buildPlan translates a classified diff into the store's write set.
func buildPlan(sess *Session, diff *Diff, entries []models.EditLogEntry, newTotal int64) *store.AmendmentPlan {
	order := sess.Order()

	plan := &store.AmendmentPlan{
		OrderID:            sess.OrderID,
		ExpectedStatus:     order.Status,
		ExpectedSettlement: order.Settlement,
		ExpectedTotal:      sess.SeededTotal(),
		NewTotal:           newTotal,
		LedgerEntries:      entries,
	}

	for _, line := range diff.Removed {
		plan.DeleteLineIDs = append(plan.DeleteLineIDs, line.ID)
	}

	for _, change := range diff.Changed {
		plan.UpdateLines = append(plan.UpdateLines, models.OrderLine{
			ID:           change.Before.ID,
			OrderID:      sess.OrderID,
			CatalogRowID: change.After.CatalogRowID,
			DisplayName:  change.After.DisplayName,
			Quantity:     change.After.Quantity,
			UnitPrice:    change.After.UnitPrice,
			LineTotal:    change.After.LineTotal(),
		})
	}

	for _, line := range diff.Added {
		plan.InsertLines = append(plan.InsertLines, models.OrderLine{
			OrderID:      sess.OrderID,
			CatalogRowID: line.CatalogRowID,
			DisplayName:  line.DisplayName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineTotal:    line.LineTotal(),
		})
	}

	return plan
}
