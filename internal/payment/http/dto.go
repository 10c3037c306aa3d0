package http

import (
	"time"

	"github.com/courtside/venue-booking-backend/internal/payment"
	"github.com/courtside/venue-booking-backend/internal/pkg/request"
)

type CreateOrderRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type OrderResponse struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"key_id"`
}

type VerifyPaymentRequest struct {
	BookingID        string `json:"booking_id" binding:"required,uuid"`
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
}

type ListPaymentsRequest struct {
	request.ListParams
}

type PaymentResponse struct {
	ID               string    `json:"id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	Amount           float64   `json:"amount"`
	BookingID        string    `json:"booking_id"`
	VenueID          string    `json:"venue_id"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		BookingID:        p.BookingID,
		VenueID:          p.VenueID,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

type VerifyResponse struct {
	Payment       PaymentResponse `json:"payment"`
	BookingID     string          `json:"booking_id"`
	PaymentStatus string          `json:"payment_status"`
}
