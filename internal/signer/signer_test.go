package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Tier  int      `json:"tier"`
	Items []string `json:"items"`
	Total string   `json:"total"`
}

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := New([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	p := payload{Tier: 2, Items: []string{"A", "B"}, Total: "142.00"}

	sig, err := s.Sign(p)
	require.NoError(t, err)
	assert.Len(t, sig, 64)
	assert.True(t, s.Verify(p, sig))

	again, err := s.Sign(p)
	require.NoError(t, err)
	assert.Equal(t, sig, again)
}

func TestVerifyRejectsMutations(t *testing.T) {
	s := newTestSigner(t)
	p := payload{Tier: 2, Items: []string{"A", "B"}, Total: "142.00"}
	sig, err := s.Sign(p)
	require.NoError(t, err)

	mutated := []payload{
		{Tier: 1, Items: []string{"A", "B"}, Total: "142.00"},
		{Tier: 2, Items: []string{"B", "A"}, Total: "142.00"},
		{Tier: 2, Items: []string{"A"}, Total: "142.00"},
		{Tier: 2, Items: []string{"A", "B"}, Total: "0.00"},
	}
	for _, m := range mutated {
		assert.False(t, s.Verify(m, sig), "mutation %+v verified", m)
	}

	assert.False(t, s.Verify(p, ""))
	assert.False(t, s.Verify(p, sig[:63]))

	flipped := []byte(sig)
	if flipped[63] == '0' {
		flipped[63] = '1'
	} else {
		flipped[63] = '0'
	}
	assert.False(t, s.Verify(p, string(flipped)))
}

func TestDifferentSecretsDisagree(t *testing.T) {
	a := newTestSigner(t)
	b, err := New([]byte("other-secret"))
	require.NoError(t, err)

	p := map[string]any{"tier": 1}
	sig, err := a.Sign(p)
	require.NoError(t, err)
	assert.False(t, b.Verify(p, sig))
}

func TestNewCopiesSecret(t *testing.T) {
	secret := []byte("mutable")
	s, err := New(secret)
	require.NoError(t, err)
	before, err := s.Sign(map[string]any{"x": 1})
	require.NoError(t, err)

	secret[0] = 'X'
	after, err := s.Sign(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, constantTimeEqual("abc", "abc"))
	assert.False(t, constantTimeEqual("abc", "abd"))
	assert.False(t, constantTimeEqual("abc", "ab"))
}
