// Package keystream produces the deterministic byte sequence that
// replaces kernel entropy. It is a pure function of (key, length): every
// request restarts the underlying stream cipher at offset zero, per
// spec.md §4.2's "per-call restart" policy. Callers must not try to
// extend a previous request's output by concatenation — two separate
// Fill calls, even for adjoining ranges, each start from byte zero.
package keystream

import (
	"golang.org/x/crypto/chacha20"
)

// KeySize is the size in bytes of the key consumed by Fill.
const KeySize = chacha20.KeySize

// Keystream generates deterministic pseudo-random bytes under a fixed key.
type Keystream struct {
	key [KeySize]byte
}

// New returns a Keystream keyed by key.
func New(key [KeySize]byte) *Keystream {
	return &Keystream{key: key}
}

// Fill writes deterministic bytes into out, using a fresh cipher instance
// keyed under k.key with an all-zero nonce each call, so that the same
// length always yields the same bytes regardless of how many prior Fill
// calls occurred.
func (k *Keystream) Fill(out []byte) error {
	if len(out) == 0 {
		return nil
	}
	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(k.key[:], nonce[:])
	if err != nil {
		return err
	}
	for i := range out {
		out[i] = 0
	}
	cipher.XORKeyStream(out, out)
	return nil
}
