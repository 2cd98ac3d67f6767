package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyValidSignature(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	v := NewVerifier(secret, "")
	err := v.Verify(signBody(secret, timestamp, body), timestamp, body, "")
	if err != nil {
		t.Errorf("Expected signature to verify, got: %v", err)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	v := NewVerifier(secret, "")
	err := v.Verify(signBody("wrong-secret", timestamp, body), timestamp, body, "")
	if err == nil {
		t.Error("Expected signature mismatch error, got nil")
	}
}

func TestVerifyTamperedBody(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := signBody(secret, timestamp, body)

	v := NewVerifier(secret, "")
	err := v.Verify(signature, timestamp, []byte(`{"type":"tampered"}`), "")
	if err == nil {
		t.Error("Expected signature mismatch error for tampered body, got nil")
	}
}

func TestVerifyStaleTimestamp(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{}`)
	timestamp := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)

	v := NewVerifier(secret, "")
	err := v.Verify(signBody(secret, timestamp, body), timestamp, body, "")
	if err == nil {
		t.Error("Expected stale timestamp to be rejected, got nil")
	}
}

func TestVerifyMissingHeaders(t *testing.T) {
	v := NewVerifier("secret", "")
	err := v.Verify("", "", []byte(`{}`), "")
	if err == nil {
		t.Error("Expected missing headers to be rejected, got nil")
	}
}

func TestVerifyTokenFallback(t *testing.T) {
	v := NewVerifier("", "legacy-token")

	if err := v.Verify("", "", []byte(`{}`), "legacy-token"); err != nil {
		t.Errorf("Expected matching token to verify, got: %v", err)
	}

	if err := v.Verify("", "", []byte(`{}`), "other-token"); err == nil {
		t.Error("Expected mismatched token to be rejected, got nil")
	}
}

func TestVerifyNothingConfigured(t *testing.T) {
	v := NewVerifier("", "")
	if err := v.Verify("", "", []byte(`{}`), ""); err != nil {
		t.Errorf("Expected unverified request to pass with no credentials configured, got: %v", err)
	}
}
