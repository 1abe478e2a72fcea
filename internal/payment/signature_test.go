package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testGateway() *Gateway {
	return NewGateway("rzp_test_key", "api_secret", "hook_secret", "INR")
}

func sign(secret, message string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	g := testGateway()
	valid := sign("api_secret", "order_abc|pay_xyz")

	assert.True(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", valid))
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_other", valid))
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", "deadbeef"))
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", ""))
}

func TestVerifyPaymentSignature_NoSecretConfigured(t *testing.T) {
	g := NewGateway("rzp_test_key", "", "", "INR")
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", sign("", "order_abc|pay_xyz")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	g := testGateway()
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	valid := sign("hook_secret", string(body))

	assert.True(t, g.VerifyWebhookSignature(body, valid))
	assert.False(t, g.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid))
	assert.False(t, g.VerifyWebhookSignature(body, sign("wrong_secret", string(body))))
	assert.False(t, g.VerifyWebhookSignature(body, ""))
}

func TestCurrencyDefault(t *testing.T) {
	g := NewGateway("k", "s", "w", "")
	assert.Equal(t, "INR", g.Currency())
}
