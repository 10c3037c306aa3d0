package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/venue-booking-backend/internal/booking"
)

const testSecret = "test-key-secret"

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeRepo struct {
	payments map[string]*Payment
	conflict bool
}

func newFakePaymentRepo() *fakeRepo {
	return &fakeRepo{payments: map[string]*Payment{}}
}

func (r *fakeRepo) Complete(_ context.Context, b *booking.Booking, p *Payment) error {
	if _, dup := r.payments[p.GatewayPaymentID]; dup {
		return ErrDuplicatePayment
	}
	if r.conflict {
		p.Status = StatusFailed
		b.PaymentStatus = booking.PaymentFailed
		b.Status = booking.StatusCancelled
		r.payments[p.GatewayPaymentID] = p
		return ErrPaymentConflict
	}
	p.Status = StatusCompleted
	p.ID = "payment-1"
	p.CreatedAt = time.Now()
	b.PaymentStatus = booking.PaymentCompleted
	r.payments[p.GatewayPaymentID] = p
	return nil
}

func (r *fakeRepo) GetByGatewayPaymentID(_ context.Context, id string) (*Payment, error) {
	return r.payments[id], nil
}

func (r *fakeRepo) ListForUser(_ context.Context, userID string, _, _ int) ([]*Payment, int, error) {
	var out []*Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type fakeBookings struct {
	pending   map[string]*booking.Booking
	announced []*booking.Booking
}

func (f *fakeBookings) GetOwnedPending(_ context.Context, id, userID string) (*booking.Booking, error) {
	b, ok := f.pending[id]
	if !ok || b.UserID != userID || b.PaymentStatus != booking.PaymentPending {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) SetGatewayOrder(_ context.Context, id, orderID string) error {
	b, ok := f.pending[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.GatewayOrderID = orderID
	return nil
}

func (f *fakeBookings) AnnounceConfirmed(_ context.Context, b *booking.Booking) {
	f.announced = append(f.announced, b)
}

type fakeGateway struct {
	orders int
	fail   bool
}

func (g *fakeGateway) CreateOrder(amount float64, _ string) (*Order, error) {
	if g.fail {
		return nil, ErrGatewayUnavailable
	}
	g.orders++
	return &Order{ID: "order_abc", Amount: amount, Currency: "INR", KeyID: "rzp_test"}, nil
}

func pendingBooking() *booking.Booking {
	return &booking.Booking{
		ID:            "booking-1",
		VenueID:       "venue-1",
		UserID:        "user-1",
		Sport:         "badminton",
		Date:          time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "12:00",
		TotalPrice:    1000,
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentPending,
	}
}

func newTestService() (Service, *fakeRepo, *fakeBookings, *fakeGateway) {
	repo := newFakePaymentRepo()
	bookings := &fakeBookings{pending: map[string]*booking.Booking{"booking-1": pendingBooking()}}
	gateway := &fakeGateway{}
	svc := NewService(repo, bookings, gateway, testSecret)
	return svc, repo, bookings, gateway
}

func TestCreateOrderStoresOrderID(t *testing.T) {
	svc, _, bookings, gateway := newTestService()

	order, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, 1000.0, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, 1, gateway.orders)
	assert.Equal(t, "order_abc", bookings.pending["booking-1"].GatewayOrderID)
}

func TestCreateOrderOwnerScoped(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-2", 1000)
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestCreateOrderAmountValidation(t *testing.T) {
	svc, _, _, gateway := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateOrder(context.Background(), "booking-1", "user-1", 999)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	assert.Zero(t, gateway.orders)
}

func TestCreateOrderGatewayDown(t *testing.T) {
	svc, _, _, gateway := newTestService()
	gateway.fail = true

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func verifyRequest() VerifyRequest {
	return VerifyRequest{
		BookingID:        "booking-1",
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		GatewaySignature: sign("order_abc", "pay_xyz"),
	}
}

func TestVerifyCapturesPayment(t *testing.T) {
	svc, _, bookings, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	res, err := svc.Verify(context.Background(), "user-1", verifyRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Payment.Status)
	assert.Equal(t, booking.PaymentCompleted, res.Booking.PaymentStatus)
	require.Len(t, bookings.announced, 1)
	assert.Equal(t, "booking-1", bookings.announced[0].ID)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	svc, _, bookings, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	req := verifyRequest()
	req.GatewaySignature = sign("order_abc", "pay_other")
	_, err = svc.Verify(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, bookings.announced)
}

func TestVerifyRejectsOrderMismatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	req := verifyRequest()
	req.GatewayOrderID = "order_forged"
	req.GatewaySignature = sign("order_forged", "pay_xyz")
	_, err = svc.Verify(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestVerifyWithoutOrder(t *testing.T) {
	svc, _, _, _ := newTestService()

	// No CreateOrder call, booking has no order id.
	_, err := svc.Verify(context.Background(), "user-1", verifyRequest())
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestVerifyDuplicatePayment(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	repo.payments["pay_xyz"] = &Payment{GatewayPaymentID: "pay_xyz"}

	_, err = svc.Verify(context.Background(), "user-1", verifyRequest())
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestVerifyLosesFirstPaymentRace(t *testing.T) {
	svc, repo, bookings, _ := newTestService()
	repo.conflict = true

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "user-1", verifyRequest())
	assert.ErrorIs(t, err, ErrPaymentConflict)

	// The losing booking is cancelled, its attempt recorded as failed, and
	// nothing is announced.
	b := bookings.pending["booking-1"]
	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.Equal(t, booking.PaymentFailed, b.PaymentStatus)
	assert.Equal(t, StatusFailed, repo.payments["pay_xyz"].Status)
	assert.Empty(t, bookings.announced)
}

func TestVerifyAlreadyPaidBooking(t *testing.T) {
	svc, _, bookings, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), "booking-1", "user-1", 1000)
	require.NoError(t, err)

	bookings.pending["booking-1"].PaymentStatus = booking.PaymentCompleted

	_, err = svc.Verify(context.Background(), "user-1", verifyRequest())
	assert.ErrorIs(t, err, ErrBookingNotPayable)
}

func TestVerifySignatureHelper(t *testing.T) {
	sig := sign("order_1", "pay_1")
	assert.True(t, VerifySignature("order_1", "pay_1", sig, testSecret))
	assert.False(t, VerifySignature("order_1", "pay_2", sig, testSecret))
	assert.False(t, VerifySignature("order_1", "pay_1", sig, "other-secret"))
	assert.False(t, VerifySignature("order_1", "pay_1", "", testSecret))
}
