// Package keyx implements the asymmetric key agreement behind sponsor
// pairing. Each party generates an X25519 keypair; the sponsee's public key
// travels in the invite payload, the sponsor's in the confirm payload, and
// both sides independently derive the same shared secret.
package keyx

import (
	"crypto/rand"
	"fmt"

	"github.com/ebergstrom/daybreak/internal/common"
	"golang.org/x/crypto/curve25519"
)

// KeyPair holds a freshly generated X25519 keypair. The private key is only
// ever persisted encrypted (the pending sponsee row); the public key is safe
// to share out-of-band.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// GenerateKeyPair returns a new random X25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return &KeyPair{Public: public, Private: private}, nil
}

// SharedSecret computes the X25519 shared secret from our private key and
// the peer's public key. The result is symmetric:
// SharedSecret(a.Private, b.Public) == SharedSecret(b.Private, a.Public).
func SharedSecret(ownPrivate, peerPublic []byte) ([]byte, error) {
	if len(ownPrivate) != curve25519.ScalarSize || len(peerPublic) != curve25519.PointSize {
		return nil, fmt.Errorf("%w: bad key length", common.ErrCrypto)
	}

	secret, err := curve25519.X25519(ownPrivate, peerPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return secret, nil
}
