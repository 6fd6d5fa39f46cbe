package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"serbisyo/models"
	"serbisyo/services/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts CreatePayment outcomes per call.
type fakeGateway struct {
	method      string
	createErrs  []error
	createCalls int
	result      models.GatewayResult
	handledRefs []string
	handleErr   error
}

func (g *fakeGateway) Method() string { return g.method }

func (g *fakeGateway) CreatePayment(ctx context.Context, req models.PaymentRequest) (models.GatewayResult, error) {
	idx := g.createCalls
	g.createCalls++
	if idx < len(g.createErrs) && g.createErrs[idx] != nil {
		return models.GatewayResult{}, g.createErrs[idx]
	}
	return g.result, nil
}

func (g *fakeGateway) HandleResult(ctx context.Context, booking *models.Booking, providerRef string) error {
	g.handledRefs = append(g.handledRefs, providerRef)
	return g.handleErr
}

type serviceFixture struct {
	service  *DefaultPaymentService
	bookings *fakeBookingRepo
	sessions *fakeSessionRepo
	metrics  *fakeMetricsRepo
	gateway  *fakeGateway
}

func newServiceFixture(booking *models.Booking) *serviceFixture {
	fx := &serviceFixture{
		bookings: newFakeBookingRepo(booking),
		sessions: newFakeSessionRepo(),
		metrics:  newFakeMetricsRepo(),
		gateway: &fakeGateway{
			method: models.PaymentMethodGCash,
			result: models.GatewayResult{Success: true, SessionRef: "src_1", RedirectURL: "https://pay.test/src_1"},
		},
	}
	transactions := &fakeTransactionRepo{}
	engine := &monitor.Engine{Repo: fx.metrics, Bookings: fx.bookings, Logger: testLogger()}
	fx.service = &DefaultPaymentService{
		Cfg:       testConfig(),
		Validator: &Validator{Cfg: testConfig(), Bookings: fx.bookings, Detector: &DuplicateDetector{Transactions: transactions}, Logger: testLogger()},
		Guard:     &SessionGuard{Sessions: fx.sessions, Logger: testLogger()},
		Bookings:  fx.bookings,
		Sessions:  fx.sessions,
		Adapters:  map[string]GatewayAdapter{models.PaymentMethodGCash: fx.gateway},
		Finalizer: &Finalizer{
			Txn:          &fakeTxnRunner{},
			Bookings:     fx.bookings,
			Transactions: transactions,
			Sessions:     fx.sessions,
			Monitor:      engine,
			Notifier:     &fakeNotifier{},
			Logger:       testLogger(),
		},
		Retry:   RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, Logger: testLogger()},
		Monitor: engine,
		Logger:  testLogger(),
	}
	return fx
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))

	res, err := fx.service.InitiatePayment(ctx, InitiateRequest{
		BookingID: "b-1", UserID: "u-1", Amount: 1000, Method: models.PaymentMethodGCash,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, models.SessionStatusPending, res.Session.Status)
	assert.Equal(t, "src_1", res.Session.GatewayReference)
	assert.Equal(t, "https://pay.test/src_1", res.RedirectURL)

	require.Len(t, fx.metrics.events, 1)
	assert.Equal(t, models.EventPaymentCreated, fx.metrics.events[0].EventType)
}

func TestInitiatePaymentRejectsInvalidRequest(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))

	_, err := fx.service.InitiatePayment(ctx, InitiateRequest{
		BookingID: "b-1", UserID: "u-1", Amount: 500, Method: models.PaymentMethodGCash,
	})
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, "validationError", pe.Code)

	assert.Zero(t, fx.gateway.createCalls, "provider must not be called for an invalid request")
	require.Len(t, fx.metrics.events, 1)
	assert.Equal(t, models.EventPaymentRejected, fx.metrics.events[0].EventType)
}

func TestInitiatePaymentRetriesTransientCreateFailures(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	fx.gateway.createErrs = []error{
		MarkTransient(errors.New("timeout")),
		MarkTransient(errors.New("timeout")),
	}

	res, err := fx.service.InitiatePayment(ctx, InitiateRequest{
		BookingID: "b-1", UserID: "u-1", Amount: 1000, Method: models.PaymentMethodGCash,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, fx.gateway.createCalls)
	assert.NotNil(t, res.Session)
}

func TestInitiatePaymentSurfacesGenericGatewayFailure(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	fx.gateway.createErrs = []error{
		MarkTransient(errors.New("down")),
		MarkTransient(errors.New("down")),
		MarkTransient(errors.New("down")),
	}

	_, err := fx.service.InitiatePayment(ctx, InitiateRequest{
		BookingID: "b-1", UserID: "u-1", Amount: 1000, Method: models.PaymentMethodGCash,
	})
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, "Failed to process payment. Please try again later", pe.Message)

	// No session is stored after a failed create.
	_, err = fx.sessions.Get(ctx, "b-1")
	assert.Error(t, err)
}

func TestInitiatePaymentBlockedByActiveSession(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	require.NoError(t, fx.sessions.Upsert(ctx, *pendingSession("b-1", "u-1", time.Minute)))

	_, err := fx.service.InitiatePayment(ctx, InitiateRequest{
		BookingID: "b-1", UserID: "u-1", Amount: 1000, Method: models.PaymentMethodGCash,
	})
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, "sessionError", pe.Code)
	assert.Zero(t, fx.gateway.createCalls)
}

func TestConfirmRedirect(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	session := pendingSession("b-1", "u-1", time.Minute)
	session.GatewayReference = "src_1"
	require.NoError(t, fx.sessions.Upsert(ctx, *session))

	require.NoError(t, fx.service.ConfirmRedirect(ctx, "b-1"))
	assert.Equal(t, []string{"src_1"}, fx.gateway.handledRefs)
}

func TestConfirmRedirectExpiredSession(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	require.NoError(t, fx.sessions.Upsert(ctx, *pendingSession("b-1", "u-1", 16*time.Minute)))

	err := fx.service.ConfirmRedirect(ctx, "b-1")
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, "Payment session has expired", pe.Message)
	assert.Empty(t, fx.gateway.handledRefs)
}

func TestGetPaymentStatusEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	require.NoError(t, fx.sessions.Upsert(ctx, *pendingSession("b-1", "u-1", time.Minute)))

	session, err := fx.service.GetPaymentStatus(ctx, "b-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "b-1", session.BookingID)

	_, err = fx.service.GetPaymentStatus(ctx, "b-1", "intruder")
	assert.Error(t, err)
}

func TestGetPaymentStatusMissingSession(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))

	_, err := fx.service.GetPaymentStatus(ctx, "b-1", "u-1")
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok, "a missing session is a business outcome, not an infrastructure failure")
	assert.Equal(t, "sessionError", pe.Code)
	assert.Equal(t, "Payment session not found", pe.Message)
}

func TestVerifyManualPayment(t *testing.T) {
	ctx := context.Background()
	booking := pendingBooking("b-1", "u-1", 1000)
	uploadedAt := time.Now().Add(-30 * time.Minute)
	booking.ProofUploadedAt = &uploadedAt
	fx := newServiceFixture(booking)
	require.NoError(t, fx.sessions.Upsert(ctx, *pendingSession("b-1", "u-1", time.Minute)))

	require.NoError(t, fx.service.VerifyManualPayment(ctx, "b-1", "admin"))

	stored, err := fx.bookings.GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusUpcoming, stored.Status)
	assert.Equal(t, "admin", stored.PaymentVerifiedBy)
}

func TestVerifyManualPaymentRequiresProof(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))

	err := fx.service.VerifyManualPayment(ctx, "b-1", "admin")
	require.Error(t, err)
	pe, ok := IsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, "Booking has no proof of payment to verify", pe.Message)
}

func TestRejectManualPayment(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture(pendingBooking("b-1", "u-1", 1000))
	require.NoError(t, fx.sessions.Upsert(ctx, *pendingSession("b-1", "u-1", time.Minute)))

	require.NoError(t, fx.service.RejectManualPayment(ctx, "b-1", "admin", "proof illegible"))

	stored, err := fx.bookings.GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaymentRejected, stored.Status)
	assert.Contains(t, stored.RejectionReason, "proof illegible")

	require.Len(t, fx.metrics.events, 1)
	assert.Equal(t, models.EventPaymentRejected, fx.metrics.events[0].EventType)
}
