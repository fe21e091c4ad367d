package ftx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

// Signer handles FTX API authentication signatures
type Signer struct {
	key        string
	secret     string
	subaccount string
}

// NewSigner creates a new Signer instance. Subaccount may be empty.
func NewSigner(key, secret, subaccount string) *Signer {
	return &Signer{
		key:        key,
		secret:     secret,
		subaccount: subaccount,
	}
}

// Headers creates the authentication headers for a request.
// method: GET, POST, DELETE
// requestPath: /api/orders?market=BTC-PERP (full path including query, no host)
// body: raw JSON bytes (nil if none)
//
// The signature payload embeds a fresh millisecond timestamp, so it must be
// recomputed per request and never cached.
func (s *Signer) Headers(method, requestPath string, body []byte) map[string]string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	sign := s.sign(timestamp, method, requestPath, body)

	headers := map[string]string{
		"FTX-KEY":      s.key,
		"FTX-SIGN":     sign,
		"FTX-TS":       timestamp,
		"Content-Type": "application/json",
	}
	if s.subaccount != "" {
		headers["FTX-SUBACCOUNT"] = url.QueryEscape(s.subaccount)
	}

	return headers
}

// sign computes the hex HMAC-SHA256 over timestamp + method + path + body.
func (s *Signer) sign(timestamp, method, requestPath string, body []byte) string {
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write([]byte(timestamp + method + requestPath))
	if len(body) > 0 {
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}
