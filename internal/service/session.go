package service

import (
	"sort"
	"sync"
	"time"

	"order-amendment-service/internal/models"

	"github.com/google/uuid"
)

// WorkingLine is one line of the in-memory working copy. OriginalLineID
// is 0 for lines added during the session.
type WorkingLine struct {
	Handle         int64  `json:"handle"`
	OriginalLineID int64  `json:"original_line_id,omitempty"`
	CatalogRowID   int64  `json:"catalog_row_id"`
	DisplayName    string `json:"display_name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
}

// LineTotal returns quantity times unit price for the working line.
func (l WorkingLine) LineTotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// orderSnapshot captures the order fields the commit path compares
// against persisted state to detect concurrent modification.
type orderSnapshot struct {
	status      string
	settlement  string
	totalAmount int64
}

// Session is the transient working copy of an order's lines during one
// editing interaction. It is never persisted; it is discarded after a
// successful commit or an explicit abandonment.
type Session struct {
	ID      string
	OrderID int64
	StaffID int64

	mu         sync.Mutex
	order      models.Order
	snapshot   orderSnapshot
	original   map[int64]models.OrderLine
	lines      map[int64]*WorkingLine
	nextHandle int64
	expiresAt  time.Time
}

// newSession seeds a working copy from the order's persisted lines.
func newSession(order *models.Order, lines []models.OrderLine, staffID int64, ttl time.Duration) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		OrderID: order.ID,
		StaffID: staffID,
		order:   *order,
		snapshot: orderSnapshot{
			status:      order.Status,
			settlement:  order.Settlement,
			totalAmount: order.TotalAmount,
		},
		original:  make(map[int64]models.OrderLine, len(lines)),
		lines:     make(map[int64]*WorkingLine, len(lines)),
		expiresAt: time.Now().Add(ttl),
	}

	for _, line := range lines {
		s.original[line.ID] = line
		s.nextHandle++
		s.lines[s.nextHandle] = &WorkingLine{
			Handle:         s.nextHandle,
			OriginalLineID: line.ID,
			CatalogRowID:   line.CatalogRowID,
			DisplayName:    line.DisplayName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
		}
	}

	return s
}

// SetQuantity updates a working line's quantity. A quantity of zero or
// less removes the line; zero-quantity lines are never persisted.
func (s *Session) SetQuantity(handle int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[handle]
	if !ok {
		return ErrLineNotFound
	}

	if quantity <= 0 {
		delete(s.lines, handle)
		return nil
	}

	line.Quantity = quantity
	return nil
}

// AddCatalogItem adds one unit of a catalog row to the working copy.
// If an original line already references the same catalog row, its
// quantity is incremented instead of creating a duplicate line.
func (s *Session) AddCatalogItem(catalogRowID, unitPrice int64, displayName string) WorkingLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.lines {
		if line.OriginalLineID != 0 && line.CatalogRowID == catalogRowID {
			line.Quantity++
			return *line
		}
	}

	s.nextHandle++
	line := &WorkingLine{
		Handle:       s.nextHandle,
		CatalogRowID: catalogRowID,
		DisplayName:  displayName,
		Quantity:     1,
		UnitPrice:    unitPrice,
	}
	s.lines[s.nextHandle] = line
	return *line
}

// RemoveLine deletes a working line, whether original or newly added.
func (s *Session) RemoveLine(handle int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[handle]; !ok {
		return ErrLineNotFound
	}
	delete(s.lines, handle)
	return nil
}

// ComputeTotal sums the current working-line totals. It is computed
// from the live working set on every call; there is no cached value
// that could go stale.
func (s *Session) ComputeTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeTotalLocked()
}

func (s *Session) computeTotalLocked() int64 {
	var total int64
	for _, line := range s.lines {
		total += line.LineTotal()
	}
	return total
}

// Lines returns the current working lines ordered by handle.
func (s *Session) Lines() []WorkingLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]WorkingLine, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// SeededTotal returns the order total captured at seed time.
func (s *Session) SeededTotal() int64 {
	return s.snapshot.totalAmount
}

// Order returns the order as it was at seed time.
func (s *Session) Order() models.Order {
	return s.order
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// SessionManager holds open edit sessions in memory, keyed by session
// ID. One session maps to one editing interaction; sessions are never
// shared across orders or persisted.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionManager creates a session manager with the given idle TTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Open seeds and registers a new session for an order.
func (m *SessionManager) Open(order *models.Order, lines []models.OrderLine, staffID int64) *Session {
	s := newSession(order, lines, staffID, m.ttl)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given ID.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete drops a session, whether committed or abandoned.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle past their TTL and returns how many were
// dropped.
func (m *SessionManager) Reap(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dropped int
	for id, s := range m.sessions {
		if s.expired(now) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}
