// Package gateway wraps the Razorpay SDK behind the narrow surface the
// payment workflow needs: creating orders and verifying callback
// signatures.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Razorpay creates orders through the Razorpay Orders API and verifies
// the HMAC-SHA256 signature Razorpay attaches to checkout callbacks.
type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

// NewRazorpay returns a gateway authenticated with the given key pair.
func NewRazorpay(keyID, secret string) *Razorpay {
	return &Razorpay{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}
}

// CreateOrder registers an order for amountMinor minor currency units
// and returns Razorpay's order id.
func (g *Razorpay) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay: create order: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay: create order: response carries no order id")
	}
	return id, nil
}

// KeyID returns the public key id the client passes to Razorpay checkout.
func (g *Razorpay) KeyID() string {
	return g.keyID
}

// VerifySignature reports whether signature is the hex HMAC-SHA256 of
// "orderID|paymentID" under the key secret, the scheme Razorpay signs
// checkout callbacks with. Comparison is constant-time.
func (g *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
