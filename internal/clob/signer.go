package clob

import (
	"crypto/ed25519"
	"net/http"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
)

// Authentication headers the venue expects on signed requests.
const (
	headerAddress   = "POLY-ADDRESS"
	headerSignature = "POLY-SIGNATURE"
	headerTimestamp = "POLY-TIMESTAMP"
)

// Signer signs venue requests on behalf of one wallet. The signed payload is
// timestamp + method + path + body, which binds the signature to a single
// request shape and a narrow time window.
type Signer struct {
	key     ed25519.PrivateKey
	address string

	// now is swapped in tests for deterministic timestamps.
	now func() time.Time
}

// NewSigner creates a signer for the given ed25519 key.
func NewSigner(key ed25519.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: base58.Encode(key.Public().(ed25519.PublicKey)),
		now:     time.Now,
	}
}

// Address returns the base58 address derived from the signing key.
func (s *Signer) Address() string {
	return s.address
}

// Sign attaches address, timestamp and signature headers to req.
func (s *Signer) Sign(req *http.Request, body []byte) error {
	ts := strconv.FormatInt(s.now().Unix(), 10)

	payload := make([]byte, 0, len(ts)+len(req.Method)+len(req.URL.Path)+len(body))
	payload = append(payload, ts...)
	payload = append(payload, req.Method...)
	payload = append(payload, req.URL.Path...)
	payload = append(payload, body...)

	sig := ed25519.Sign(s.key, payload)

	req.Header.Set(headerAddress, s.address)
	req.Header.Set(headerTimestamp, ts)
	req.Header.Set(headerSignature, base58.Encode(sig))
	return nil
}

// Verify checks a signature produced by Sign. Used by tests and tooling.
func Verify(pub ed25519.PublicKey, timestamp, method, path string, body []byte, sigB58 string) bool {
	sig, err := base58.Decode(sigB58)
	if err != nil {
		return false
	}
	payload := []byte(timestamp + method + path)
	payload = append(payload, body...)
	return ed25519.Verify(pub, payload, sig)
}
