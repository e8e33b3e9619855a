// Package signer issues and checks HMAC-SHA256 signatures over the canonical
// encoding of a payload.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"bundle-checkout/internal/canonical"
)

// ErrEmptySecret is returned when a Signer is built without key material.
var ErrEmptySecret = errors.New("signer: secret must not be empty")

// Signer holds a server-side secret. It is safe for concurrent use.
type Signer struct {
	secret []byte
}

// New copies secret so later mutation by the caller cannot change signatures.
func New(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{secret: key}, nil
}

// Sign returns the hex-encoded HMAC of the payload's canonical form.
func (s *Signer) Sign(payload any) (string, error) {
	data, err := canonical.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("signer: %w", err)
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether signature matches the payload. Comparison time does
// not depend on where the strings differ.
func (s *Signer) Verify(payload any, signature string) bool {
	expected, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return constantTimeEqual(signature, expected)
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
