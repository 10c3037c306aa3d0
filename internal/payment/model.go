package payment

import (
	"net/http"
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrBookingNotPayable  = apperror.New(http.StatusNotFound, "no pending booking found for payment")
	ErrInvalidAmount      = apperror.New(http.StatusBadRequest, "amount must be greater than zero")
	ErrAmountMismatch     = apperror.New(http.StatusBadRequest, "amount does not match the booking total")
	ErrInvalidSignature   = apperror.New(http.StatusBadRequest, "payment signature verification failed")
	ErrDuplicatePayment   = apperror.New(http.StatusConflict, "payment has already been recorded")
	ErrGatewayUnavailable = apperror.New(http.StatusServiceUnavailable, "payment gateway is unavailable, try again later")

	// ErrPaymentConflict is returned to the loser of a first-payment-wins
	// race: another requester completed payment for an overlapping slot
	// after this booking was admitted.
	ErrPaymentConflict = apperror.New(http.StatusConflict, "slot was taken by another booking, payment not captured")
)

// Status of a recorded payment attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment is one gateway payment attempt against a booking. Signature
// verification happens before a row is written, so every stored payment
// carried a valid signature.
type Payment struct {
	ID               string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	Amount           float64
	BookingID        string
	UserID           string
	VenueID          string
	Status           Status
	CreatedAt        time.Time
}

// Order is the gateway order handed to the client to drive checkout.
type Order struct {
	ID       string
	Amount   float64 // major currency units
	Currency string
	KeyID    string // public gateway key for the client SDK
}
