package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks the HMAC-SHA256 signatures the gateway attaches to
// checkout callbacks and webhooks.
type Verifier struct {
	keySecret     string
	webhookSecret string
}

func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{keySecret: keySecret, webhookSecret: webhookSecret}
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func equal(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, payload)), []byte(signature))
}

// VerifySignature checks a checkout callback, signed over "orderId|paymentId".
func (v *Verifier) VerifySignature(orderID, paymentID, signature string) bool {
	return equal(v.keySecret, []byte(orderID+"|"+paymentID), signature)
}

// VerifyWebhook checks the signature of a raw webhook body.
func (v *Verifier) VerifyWebhook(body []byte, signature string) bool {
	return equal(v.webhookSecret, body, signature)
}
