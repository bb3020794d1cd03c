// Package crypto defines the signer/verifier capability contract the
// rest of the core depends on, with an ed25519 implementation built on
// golang.org/x/crypto. Nothing outside this package names the curve, so
// a deployment can swap in another scheme behind the same interfaces.
package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

// PublicKey is an opaque verification key.
type PublicKey []byte

// Signature pairs a public key with the signature bytes it produced.
type Signature struct {
	PublicKey PublicKey
	Payload   []byte
}

// Signer produces signatures over arbitrary payloads (transaction
// reduced-hash, block hash, query hash).
type Signer interface {
	PublicKey() PublicKey
	Sign(payload []byte) (Signature, error)
}

// Verifier checks a Signature against a payload.
type Verifier interface {
	Verify(payload []byte, sig Signature) bool
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// GenerateKey creates a fresh ed25519 signing keypair.
func GenerateKey() (Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return &ed25519Signer{priv: priv, pub: pub}, nil
}

// NewSigner wraps an existing ed25519 private key.
func NewSigner(priv ed25519.PrivateKey) Signer {
	return &ed25519Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}
}

func (s *ed25519Signer) PublicKey() PublicKey { return PublicKey(append([]byte(nil), s.pub...)) }

func (s *ed25519Signer) Sign(payload []byte) (Signature, error) {
	sig := ed25519.Sign(s.priv, payload)
	return Signature{PublicKey: s.PublicKey(), Payload: sig}, nil
}

type ed25519Verifier struct{}

// DefaultVerifier verifies ed25519 signatures.
var DefaultVerifier Verifier = ed25519Verifier{}

func (ed25519Verifier) Verify(payload []byte, sig Signature) bool {
	if len(sig.PublicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(sig.PublicKey), payload, sig.Payload)
}
