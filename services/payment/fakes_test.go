package payment

import (
	"context"
	"time"

	bookingRepo "serbisyo/database/repository/booking"
	paysessionRepo "serbisyo/database/repository/paysession"
	"serbisyo/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger { return zap.NewNop() }

// fakeBookingRepo is an in-memory BookingRepository keyed by booking ID.
type fakeBookingRepo struct {
	bookings map[string]*models.Booking
	getErr   error
	getCalls int
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: map[string]*models.Booking{}}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, id string, meta bookingRepo.PaidMeta) (bool, error) {
	b, ok := r.bookings[id]
	if !ok {
		return false, bookingRepo.ErrNotFound
	}
	if b.Status != models.BookingStatusPendingPayment {
		return false, nil
	}
	b.Status = models.BookingStatusUpcoming
	b.PaymentMethod = meta.Method
	b.GatewayReference = meta.GatewayRef
	b.PaymentVerifiedBy = meta.VerifiedBy
	verifiedAt := meta.VerifiedAt
	b.PaymentVerifiedAt = &verifiedAt
	return true, nil
}

func (r *fakeBookingRepo) MarkRejected(ctx context.Context, id string, reason string) (bool, error) {
	b, ok := r.bookings[id]
	if !ok {
		return false, bookingRepo.ErrNotFound
	}
	if b.Status != models.BookingStatusPendingPayment {
		return false, nil
	}
	b.Status = models.BookingStatusPaymentRejected
	b.RejectionReason = reason
	return true, nil
}

func (r *fakeBookingRepo) SetProofUploaded(ctx context.Context, id string, url string, at time.Time) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ProofURL = url
	b.ProofUploadedAt = &at
	return nil
}

func (r *fakeBookingRepo) FindStalledProofs(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusPendingPayment && b.ProofUploadedAt != nil && b.ProofUploadedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeTransactionRepo is an in-memory append-only ledger.
type fakeTransactionRepo struct {
	entries []models.Transaction
	findErr error
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx models.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = "tx-" + time.Now().Format("150405.000000")
	}
	r.entries = append(r.entries, tx)
	return tx.ID, nil
}

func (r *fakeTransactionRepo) FindLatestByPayment(ctx context.Context, bookingID string, amount float64, method string) (*models.Transaction, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var latest *models.Transaction
	for i := range r.entries {
		tx := &r.entries[i]
		if tx.BookingID != bookingID || tx.Amount != amount || tx.PaymentMethod != method {
			continue
		}
		if tx.Status != models.TransactionStatusPending && tx.Status != models.TransactionStatusCompleted {
			continue
		}
		if latest == nil || tx.CreatedAt.After(latest.CreatedAt) {
			latest = tx
		}
	}
	return latest, nil
}

func (r *fakeTransactionRepo) HasCompletedPayment(ctx context.Context, bookingID string) (bool, error) {
	for _, tx := range r.entries {
		if tx.BookingID == bookingID && tx.Type == models.TransactionTypeBookingPayment && tx.Status == models.TransactionStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) GetByBookingID(ctx context.Context, bookingID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range r.entries {
		if tx.BookingID == bookingID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// fakeSessionRepo stores one session per booking.
type fakeSessionRepo struct {
	sessions map[string]*models.PaymentSession
	getErr   error
}

func newFakeSessionRepo(sessions ...*models.PaymentSession) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[string]*models.PaymentSession{}}
	for _, s := range sessions {
		r.sessions[s.BookingID] = s
	}
	return r
}

func (r *fakeSessionRepo) Get(ctx context.Context, bookingID string) (*models.PaymentSession, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.sessions[bookingID]
	if !ok {
		return nil, paysessionRepo.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Upsert(ctx context.Context, session models.PaymentSession) error {
	r.sessions[session.BookingID] = &session
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, bookingID, status, failureReason string) (bool, error) {
	s, ok := r.sessions[bookingID]
	if !ok || s.Status != models.SessionStatusPending {
		return false, nil
	}
	s.Status = status
	s.FailureReason = failureReason
	s.UpdatedAt = time.Now()
	return true, nil
}

// fakeTxnRunner invokes the batch directly; the fakes have no rollback, so
// tests assert on final state only.
type fakeTxnRunner struct {
	calls int
}

func (r *fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

// fakeNotifier records notification calls.
type fakeNotifier struct {
	successes []string
	failures  []string
}

func (n *fakeNotifier) NotifyPaymentSuccess(ctx context.Context, bookingID, userID string, amount float64) {
	n.successes = append(n.successes, bookingID)
}

func (n *fakeNotifier) NotifyPaymentFailure(ctx context.Context, bookingID, userID, reason string) {
	n.failures = append(n.failures, bookingID)
}

// fakeDedupCache is an in-memory DedupCache.
type fakeDedupCache struct {
	keys   map[string]bool
	setErr error
}

func newFakeDedupCache() *fakeDedupCache {
	return &fakeDedupCache{keys: map[string]bool{}}
}

func (c *fakeDedupCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if c.setErr != nil {
		return redis.NewBoolResult(false, c.setErr)
	}
	if c.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	c.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (c *fakeDedupCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if c.keys[key] {
			delete(c.keys, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

// fakeMetricsRepo records tracked events and daily increments.
type fakeMetricsRepo struct {
	events     []models.PaymentEvent
	increments map[string]int
}

func newFakeMetricsRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{increments: map[string]int{}}
}

func (r *fakeMetricsRepo) AppendEvent(ctx context.Context, event models.PaymentEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeMetricsRepo) IncrementDaily(ctx context.Context, date, counter string, amount float64) error {
	r.increments[counter]++
	return nil
}

func (r *fakeMetricsRepo) GetDailyRange(ctx context.Context, from, to string) ([]models.DailyMetrics, error) {
	return nil, nil
}

func (r *fakeMetricsRepo) EventsSince(ctx context.Context, since time.Time, eventType string) ([]models.PaymentEvent, error) {
	var out []models.PaymentEvent
	for _, ev := range r.events {
		if ev.Timestamp.After(since) && (eventType == "" || ev.EventType == eventType) {
			out = append(out, ev)
		}
	}
	return out, nil
}
