package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/venue-booking-backend/internal/booking"
)

// VerifyRequest carries the checkout result posted back by the client after
// the gateway flow completes.
type VerifyRequest struct {
	BookingID        string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// VerifyResult pairs the captured payment with the now-paid booking.
type VerifyResult struct {
	Payment *Payment
	Booking *booking.Booking
}

type Service interface {
	// CreateOrder opens a gateway order for the caller's pending booking and
	// stores the order id on the booking for later verification. The amount
	// must match the booking's recorded total.
	CreateOrder(ctx context.Context, bookingID, userID string, amount float64) (*Order, error)

	// Verify validates the gateway signature and settles the payment.
	// Settlement is first-payment-wins: if a competing paid booking overlaps,
	// the attempt is recorded as failed, the booking is cancelled and
	// ErrPaymentConflict is returned.
	Verify(ctx context.Context, userID string, req VerifyRequest) (*VerifyResult, error)

	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*Payment, int, error)
}

// BookingGate is the slice of the booking service the payment flow needs.
type BookingGate interface {
	GetOwnedPending(ctx context.Context, id, userID string) (*booking.Booking, error)
	SetGatewayOrder(ctx context.Context, id, orderID string) error
	AnnounceConfirmed(ctx context.Context, b *booking.Booking)
}

type service struct {
	repo      Repository
	bookings  BookingGate
	gateway   Gateway
	keySecret string
}

func NewService(repo Repository, bookings BookingGate, gateway Gateway, keySecret string) Service {
	return &service{
		repo:      repo,
		bookings:  bookings,
		gateway:   gateway,
		keySecret: keySecret,
	}
}

func (s *service) CreateOrder(ctx context.Context, bookingID, userID string, amount float64) (*Order, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	b, err := s.bookings.GetOwnedPending(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotPayable
		}
		return nil, err
	}

	if amount != b.TotalPrice {
		return nil, ErrAmountMismatch
	}

	order, err := s.gateway.CreateOrder(b.TotalPrice, fmt.Sprintf("booking_%s", b.ID))
	if err != nil {
		return nil, err
	}

	if err := s.bookings.SetGatewayOrder(ctx, b.ID, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Verify(ctx context.Context, userID string, req VerifyRequest) (*VerifyResult, error) {
	b, err := s.bookings.GetOwnedPending(ctx, req.BookingID, userID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotPayable
		}
		return nil, err
	}

	// The booking must carry the exact order this checkout was opened for;
	// anything else looks like a missing payable booking.
	if b.GatewayOrderID == "" || b.GatewayOrderID != req.GatewayOrderID {
		return nil, ErrBookingNotPayable
	}

	if !VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature, s.keySecret) {
		return nil, ErrInvalidSignature
	}

	if existing, err := s.repo.GetByGatewayPaymentID(ctx, req.GatewayPaymentID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicatePayment
	}

	p := &Payment{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		Amount:           b.TotalPrice,
		BookingID:        b.ID,
		UserID:           b.UserID,
		VenueID:          b.VenueID,
	}

	if err := s.repo.Complete(ctx, b, p); err != nil {
		return nil, err
	}

	s.bookings.AnnounceConfirmed(ctx, b)

	return &VerifyResult{Payment: p, Booking: b}, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*Payment, int, error) {
	return s.repo.ListForUser(ctx, userID, page, pageSize)
}
