package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// Ledger is an in-memory stand-in for the PostgreSQL stores. WithinTx
// snapshots every table and restores it when fn fails; transactions are
// serialized, which is what row locks give the real store.
type Ledger struct {
	mu   sync.Mutex
	txMu sync.Mutex

	revenue     map[string]booking.RawBooking
	legacy      map[string]booking.RawBooking
	assignments map[string]commission.Assignment
	records     map[string]commission.Record
	balances    map[string]payout.Balance
	requests    map[string]payout.Request
	order       []string
	failures    map[string]error
}

type txKey struct{}

// Operation names accepted by Fail.
const (
	OpCreateRevenueRecord   = "booking.create_revenue"
	OpCreateCalendarBooking = "booking.create_calendar"
	OpCommissionUpdate      = "commission.update"
	OpBalanceUpsert         = "balance.upsert"
	OpPayoutUpdate          = "payout.update"
)

func NewLedger() *Ledger {
	return &Ledger{
		revenue:     map[string]booking.RawBooking{},
		legacy:      map[string]booking.RawBooking{},
		assignments: map[string]commission.Assignment{},
		records:     map[string]commission.Record{},
		balances:    map[string]payout.Balance{},
		requests:    map[string]payout.Request{},
		failures:    map[string]error{},
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (l *Ledger) Fail(op string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.failures, op)
		return
	}
	l.failures[op] = err
}

func (l *Ledger) failure(op string) error { return l.failures[op] }

// WithinTx implements the Transactor interfaces of the domain packages.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	l.txMu.Lock()
	defer l.txMu.Unlock()

	l.mu.Lock()
	snap := l.snapshot()
	l.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		l.mu.Lock()
		l.restore(snap)
		l.mu.Unlock()
		return err
	}
	return nil
}

type ledgerSnapshot struct {
	revenue, legacy map[string]booking.RawBooking
	records         map[string]commission.Record
	balances        map[string]payout.Balance
	requests        map[string]payout.Request
	order           []string
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (l *Ledger) snapshot() ledgerSnapshot {
	return ledgerSnapshot{
		revenue:  copyMap(l.revenue),
		legacy:   copyMap(l.legacy),
		records:  copyMap(l.records),
		balances: copyMap(l.balances),
		requests: copyMap(l.requests),
		order:    append([]string(nil), l.order...),
	}
}

func (l *Ledger) restore(s ledgerSnapshot) {
	l.revenue, l.legacy = s.revenue, s.legacy
	l.records, l.balances, l.requests = s.records, s.balances, s.requests
	l.order = s.order
}

// ─────────────────────────────────────────────────────────────────────────────
// Seeding and inspection
// ─────────────────────────────────────────────────────────────────────────────

// SeedRevenueBooking stores b in the booking-revenue table.
func (l *Ledger) SeedRevenueBooking(b booking.RawBooking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revenue[b.ID] = b
}

// SeedLegacyBooking stores b in the legacy booking table.
func (l *Ledger) SeedLegacyBooking(b booking.RawBooking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.legacy[b.ID] = b
}

// SeedAssignment assigns a property to a manager.
func (l *Ledger) SeedAssignment(a commission.Assignment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assignments[a.PropertyID] = a
}

// SeedBalance stores b as the manager's balance.
func (l *Ledger) SeedBalance(b payout.Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[b.ManagerID] = b
}

// Balance returns the stored balance of managerID.
func (l *Ledger) Balance(managerID string) (payout.Balance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[managerID]
	return b, ok
}

// Record returns the stored commission record id.
func (l *Ledger) Record(id string) (commission.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[id]
	return r, ok
}

// Payout returns the stored payout request id.
func (l *Ledger) Payout(id string) (payout.Request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[id]
	return r, ok
}

// HasCalendarBooking reports whether id exists in the legacy table.
func (l *Ledger) HasCalendarBooking(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.legacy[id]
	return ok
}

// HasRevenueRecord reports whether id exists in the booking-revenue table.
func (l *Ledger) HasRevenueRecord(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revenue[id]
	return ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Bookings
// ─────────────────────────────────────────────────────────────────────────────

// BookingStore is the booking view of a Ledger.
type BookingStore struct{ l *Ledger }

func (l *Ledger) Bookings() *BookingStore { return &BookingStore{l: l} }

func (s *BookingStore) FindByID(_ context.Context, id string) (*booking.RawBooking, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if b, ok := s.l.revenue[id]; ok {
		return &b, nil
	}
	if b, ok := s.l.legacy[id]; ok {
		return &b, nil
	}
	return nil, errors.New(errors.ErrCodeBookingNotFound, "booking not found").WithDetail(id)
}

func (s *BookingStore) List(_ context.Context, orgID string, q booking.Query) ([]booking.RawBooking, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	match := func(b booking.RawBooking) bool {
		return b.OrgID == orgID &&
			(q.PropertyID == "" || b.PropertyID == q.PropertyID) &&
			(q.From.IsZero() || !b.CheckIn.Before(q.From)) &&
			(q.To.IsZero() || !b.CheckIn.After(q.To))
	}
	var out []booking.RawBooking
	for _, b := range s.l.revenue {
		if match(b) {
			out = append(out, b)
		}
	}
	for id, b := range s.l.legacy {
		if _, mirrored := s.l.revenue[id]; !mirrored && match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.Before(out[j].CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *BookingStore) CreateRevenueRecord(_ context.Context, b *booking.RawBooking) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if err := s.l.failure(OpCreateRevenueRecord); err != nil {
		return err
	}
	if _, ok := s.l.revenue[b.ID]; ok {
		return errors.New(errors.ErrCodeReservationConflict, "reservation already exists").WithDetail(b.ID)
	}
	s.l.revenue[b.ID] = *b
	return nil
}

func (s *BookingStore) CreateCalendarBooking(_ context.Context, b *booking.RawBooking) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if err := s.l.failure(OpCreateCalendarBooking); err != nil {
		return err
	}
	if _, ok := s.l.legacy[b.ID]; ok {
		return errors.New(errors.ErrCodeReservationConflict, "reservation already exists").WithDetail(b.ID)
	}
	s.l.legacy[b.ID] = *b
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Assignments and commissions
// ─────────────────────────────────────────────────────────────────────────────

// AssignmentStore is the assignment view of a Ledger.
type AssignmentStore struct{ l *Ledger }

func (l *Ledger) Assignments() *AssignmentStore { return &AssignmentStore{l: l} }

func (s *AssignmentStore) ForProperty(_ context.Context, propertyID string) (*commission.Assignment, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	a, ok := s.l.assignments[propertyID]
	if !ok {
		return nil, errors.NotFound("property not assigned").WithDetail(propertyID)
	}
	return &a, nil
}

// CommissionStore is the commission-record view of a Ledger.
type CommissionStore struct{ l *Ledger }

func (l *Ledger) Commissions() *CommissionStore { return &CommissionStore{l: l} }

func (s *CommissionStore) Create(_ context.Context, r *commission.Record) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	for _, existing := range s.l.records {
		if existing.BookingID == r.BookingID && existing.Role == r.Role {
			return errors.Conflict("commission already exists").WithDetail(r.BookingID)
		}
	}
	s.l.records[r.ID] = *r
	return nil
}

func (s *CommissionStore) Update(_ context.Context, r *commission.Record) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if err := s.l.failure(OpCommissionUpdate); err != nil {
		return err
	}
	existing, ok := s.l.records[r.ID]
	if !ok {
		return errors.New(errors.ErrCodeCommissionNotFound, "commission not found").WithDetail(r.ID)
	}
	if existing.Status == commission.StatusFinalized {
		return errors.New(errors.ErrCodeCommissionFinalized, "commission record is finalized").WithDetail(r.ID)
	}
	s.l.records[r.ID] = *r
	return nil
}

func (s *CommissionStore) GetByID(_ context.Context, id string) (*commission.Record, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	r, ok := s.l.records[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeCommissionNotFound, "commission not found").WithDetail(id)
	}
	return &r, nil
}

func (s *CommissionStore) FindByBooking(_ context.Context, bookingID string, role commission.Role) (*commission.Record, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	for _, r := range s.l.records {
		if r.BookingID == bookingID && r.Role == role {
			return &r, nil
		}
	}
	return nil, errors.New(errors.ErrCodeCommissionNotFound, "commission not found").WithDetail(bookingID)
}

func (s *CommissionStore) ListByManager(_ context.Context, managerID string, from, to common.Period) ([]*commission.Record, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	var out []*commission.Record
	for _, r := range s.l.records {
		if r.ManagerID == managerID && r.Period.Within(from, to) {
			rec := r
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Balances and payouts
// ─────────────────────────────────────────────────────────────────────────────

// BalanceStore is the balance view of a Ledger.
type BalanceStore struct{ l *Ledger }

func (l *Ledger) Balances() *BalanceStore { return &BalanceStore{l: l} }

func (s *BalanceStore) Get(_ context.Context, managerID string) (*payout.Balance, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	b, ok := s.l.balances[managerID]
	if !ok {
		return nil, errors.NotFound("balance not found").WithDetail(managerID)
	}
	return &b, nil
}

func (s *BalanceStore) GetForUpdate(ctx context.Context, managerID string) (*payout.Balance, error) {
	return s.Get(ctx, managerID)
}

func (s *BalanceStore) Upsert(_ context.Context, b *payout.Balance) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if err := s.l.failure(OpBalanceUpsert); err != nil {
		return err
	}
	s.l.balances[b.ManagerID] = *b
	return nil
}

// PayoutStore is the payout-request view of a Ledger.
type PayoutStore struct{ l *Ledger }

func (l *Ledger) Payouts() *PayoutStore { return &PayoutStore{l: l} }

func (s *PayoutStore) Create(_ context.Context, r *payout.Request) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	s.l.requests[r.ID] = *r
	s.l.order = append(s.l.order, r.ID)
	return nil
}

func (s *PayoutStore) Get(_ context.Context, id string) (*payout.Request, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	r, ok := s.l.requests[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePayoutNotFound, "payout not found").WithDetail(id)
	}
	return &r, nil
}

func (s *PayoutStore) GetForUpdate(ctx context.Context, id string) (*payout.Request, error) {
	return s.Get(ctx, id)
}

func (s *PayoutStore) Update(_ context.Context, r *payout.Request) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if err := s.l.failure(OpPayoutUpdate); err != nil {
		return err
	}
	if _, ok := s.l.requests[r.ID]; !ok {
		return errors.New(errors.ErrCodePayoutNotFound, "payout not found").WithDetail(r.ID)
	}
	s.l.requests[r.ID] = *r
	return nil
}

func (s *PayoutStore) ListByManager(_ context.Context, managerID string, status payout.Status) ([]*payout.Request, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	var out []*payout.Request
	for i := len(s.l.order) - 1; i >= 0; i-- {
		r := s.l.requests[s.l.order[i]]
		if r.ManagerID == managerID && (status == "" || r.Status == status) {
			out = append(out, &r)
		}
	}
	return out, nil
}

//Personal.AI order the ending
