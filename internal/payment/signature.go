package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signHMAC computes the hex-encoded HMAC-SHA256 of message under secret.
func signHMAC(secret, message string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature checks the signature the widget returns on success:
// HMAC-SHA256 over "<order_id>|<payment_id>" keyed by the API secret.
// Comparison is constant time.
func (g *Gateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if g.keySecret == "" || signature == "" {
		return false
	}
	expected := signHMAC(g.keySecret, orderID+"|"+paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body, keyed by the webhook secret.
func (g *Gateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if g.webhookSecret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(g.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
