package ftx

import (
	"testing"
)

func TestSigner_SignDeterminism(t *testing.T) {
	signer := NewSigner("key", "secret", "")

	a := signer.sign("1600000000000", "GET", "/api/markets", nil)
	b := signer.sign("1600000000000", "GET", "/api/markets", nil)

	if a != b {
		t.Errorf("identical inputs produced different signatures: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}

	c := signer.sign("1600000000001", "GET", "/api/markets", nil)
	if a == c {
		t.Error("different timestamps must produce different signatures")
	}

	d := signer.sign("1600000000000", "GET", "/api/markets", []byte(`{"x":1}`))
	if a == d {
		t.Error("body bytes must be part of the payload")
	}
}

func TestSigner_KnownVector(t *testing.T) {
	// Standard HMAC-SHA256 test vector, hex encoded:
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	signer := NewSigner("", "key", "")

	got := signer.sign("", "", "The quick brown fox jumps over the lazy dog", nil)
	expected := "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"

	if got != expected {
		t.Errorf("HMAC mismatch. Expected %s, got %s", expected, got)
	}
}

func TestSigner_Headers(t *testing.T) {
	signer := NewSigner("pubkey", "secret", "")

	headers := signer.Headers("POST", "/api/orders", []byte(`{"market":"BTC-PERP"}`))

	if headers["FTX-KEY"] != "pubkey" {
		t.Errorf("Expected FTX-KEY to be 'pubkey', got %s", headers["FTX-KEY"])
	}
	if headers["FTX-SIGN"] == "" {
		t.Error("FTX-SIGN should not be empty")
	}
	if len(headers["FTX-TS"]) != 13 { // Milliseconds
		t.Errorf("Expected timestamp len 13, got %s", headers["FTX-TS"])
	}
	if _, ok := headers["FTX-SUBACCOUNT"]; ok {
		t.Error("FTX-SUBACCOUNT must be absent when no subaccount is configured")
	}
}

func TestSigner_SubaccountHeader(t *testing.T) {
	signer := NewSigner("pubkey", "secret", "my sub")

	headers := signer.Headers("GET", "/api/account", nil)

	if headers["FTX-SUBACCOUNT"] != "my+sub" {
		t.Errorf("Expected percent-encoded subaccount, got %q", headers["FTX-SUBACCOUNT"])
	}
}
