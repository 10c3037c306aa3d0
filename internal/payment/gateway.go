package payment

import (
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway creates payment orders with the external provider.
type Gateway interface {
	// CreateOrder opens an order for the given amount in major currency
	// units. The receipt ties the order back to the booking.
	CreateOrder(amount float64, receipt string) (*Order, error)
}

// NewDisabledGateway stands in when no gateway credentials are configured;
// every order attempt reports the gateway as unavailable.
func NewDisabledGateway() Gateway {
	return disabledGateway{}
}

type disabledGateway struct{}

func (disabledGateway) CreateOrder(float64, string) (*Order, error) {
	return nil, ErrGatewayUnavailable
}

type razorpayGateway struct {
	client *razorpay.Client
	keyID  string
}

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	return &razorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
	}
}

func (g *razorpayGateway) CreateOrder(amount float64, receipt string) (*Order, error) {
	data := map[string]interface{}{
		// The gateway counts in the smallest currency unit.
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		log.Printf("gateway order creation failed: %v", err)
		return nil, ErrGatewayUnavailable
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("gateway returned order without id: %v", body)
	}

	return &Order{
		ID:       orderID,
		Amount:   amount,
		Currency: "INR",
		KeyID:    g.keyID,
	}, nil
}
