package tebex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func signBody(payload []byte, secret string) string {
	bodyHash := sha256.Sum256(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(hex.EncodeToString(bodyHash[:])))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"validation.webhook","id":"evt-1"}`)
	secret := "whsec-test"

	valid := signBody(payload, secret)
	if !VerifyWebhookSignature(payload, valid, secret) {
		t.Fatalf("expected valid signature to verify")
	}

	// Header casing and whitespace are tolerated.
	if !VerifyWebhookSignature(payload, "  "+strings.ToUpper(valid)+"  ", secret) {
		t.Fatalf("expected upper-case padded signature to verify")
	}

	if VerifyWebhookSignature(payload, valid, "other-secret") {
		t.Fatalf("signature under the wrong secret must fail")
	}
	if VerifyWebhookSignature([]byte(`{"tampered":true}`), valid, secret) {
		t.Fatalf("signature over a different body must fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("empty signature must fail")
	}
	if VerifyWebhookSignature(payload, valid, "") {
		t.Fatalf("missing secret must fail closed")
	}
}

func TestVerifyWebhookSignatureNotPlainHMAC(t *testing.T) {
	// The provider signs the hex digest of the body, not the raw body.
	payload := []byte(`{"type":"payment.completed"}`)
	secret := "whsec-test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	plain := hex.EncodeToString(mac.Sum(nil))

	if VerifyWebhookSignature(payload, plain, secret) {
		t.Fatalf("plain HMAC over the body must not verify")
	}
}
