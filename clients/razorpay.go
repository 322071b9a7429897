package clients

import (
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// PaymentGateway abstracts the gateway operations the booking flow needs.
// Tests substitute a fake; production wires the Razorpay SDK.
type PaymentGateway interface {
	// CreateOrder opens a gateway order for the given amount in minor units
	// (paise for INR) and returns the raw order payload.
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	// VerifyWebhookSignature checks a webhook body against its signature
	// header using the configured webhook secret.
	VerifyWebhookSignature(body, signature string) bool
}

// RazorpayGateway implements PaymentGateway on the Razorpay SDK.
type RazorpayGateway struct {
	client        *razorpay.Client
	webhookSecret string
}

// Name is the gateway identifier stored on payment rows.
const RazorpayName = "razorpay"

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		webhookSecret: webhookSecret,
	}
}

func (g *RazorpayGateway) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return g.client.Order.Create(data, nil)
}

func (g *RazorpayGateway) VerifyWebhookSignature(body, signature string) bool {
	return utils.VerifyWebhookSignature(body, signature, g.webhookSecret)
}
