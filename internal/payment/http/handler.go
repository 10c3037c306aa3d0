package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtside/venue-booking-backend/internal/auth"
	"github.com/courtside/venue-booking-backend/internal/payment"
	"github.com/courtside/venue-booking-backend/internal/pkg/response"
)

type Handler struct {
	paymentService payment.Service
}

func NewHandler(paymentService payment.Service) *Handler {
	return &Handler{paymentService: paymentService}
}

// CreateOrder opens a gateway order for a pending booking.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), req.BookingID, auth.GetUserID(c), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, OrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    order.KeyID,
	})
}

// Verify settles a completed checkout. A losing first-payment-wins race
// surfaces as 409 with the booking already cancelled.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	res, err := h.paymentService.Verify(c.Request.Context(), auth.GetUserID(c), payment.VerifyRequest{
		BookingID:        req.BookingID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Payment:       NewPaymentResponse(res.Payment),
		BookingID:     res.Booking.ID,
		PaymentStatus: string(res.Booking.PaymentStatus),
	})
}

// List returns the authenticated user's payment history.
func (h *Handler) List(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	req.Normalize()

	payments, total, err := h.paymentService.ListForUser(c.Request.Context(), auth.GetUserID(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, NewPaymentResponse(p))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
