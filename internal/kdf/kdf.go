// Package kdf wraps a memory-hard password-hash primitive, turning a
// passphrase into the 32-byte key that seeds the keystream. The choice of
// primitive and its parameters are an implementation detail: spec.md
// treats the KDF as a black box and only requires that it be deterministic
// in (passphrase) and moderately expensive to invert.
package kdf

import (
	"golang.org/x/crypto/argon2"

	"github.com/venusroot/keyed/internal/keyederr"
)

// KeySize is the size in bytes of the derived key.
const KeySize = 32

const (
	// time and memory cost parameters, chosen to match crypto_pwhash's
	// OPSLIMIT_MODERATE / MEMLIMIT_MODERATE intent from the reference
	// implementation without requiring the same memory footprint.
	opsLimit   = 3
	memLimitKB = 64 * 1024
	threads    = 1
)

// Derive applies argon2id to passphrase with a fixed all-zero salt,
// producing a 32-byte key. The salt is fixed deliberately: determinism
// across runs is the entire point of this tool, at the cost of two users
// with the same passphrase getting identical keystreams (see spec.md Open
// Questions).
func Derive(passphrase []byte) (key [KeySize]byte, err error) {
	salt := make([]byte, 16)
	defer func() {
		if r := recover(); r != nil {
			err = keyederr.New(keyederr.Kdf, "allocation failed")
		}
	}()
	out := argon2.IDKey(passphrase, salt, opsLimit, memLimitKB, threads, KeySize)
	copy(key[:], out)
	return key, nil
}
