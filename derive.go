package noise

import (
	"crypto/sha256"
	"hash"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

func newSHA256() hash.Hash { return sha256.New() }

// DerivePSK stretches a low-entropy passphrase into a 32-byte pre-shared
// key suitable for SetPreSharedKey. It is not part of the Noise Protocol
// Framework proper (the framework treats the PSK as already-uniform key
// material) but every deployment needs some way to get from an
// operator-supplied passphrase to one, so this mirrors the daemon's
// auth/auth.go: Argon2id for the passphrase-stretching step, then a
// standard RFC 5869 HKDF extract-and-expand with the same salt
// (golang.org/x/crypto/hkdf, distinct from
// the framework's own chained-HMAC construction in hash.go) to bind the
// result to the protocol name and any caller-supplied context.
func DerivePSK(passphrase, salt []byte, protocolName, info string) ([]byte, error) {
	const (
		argonTime    = 3
		argonMemory  = 64 * 1024
		argonThreads = 4
		argonKeyLen  = 32
	)
	stretched := argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	defer zero(stretched)

	reader := hkdf.New(newSHA256, stretched, salt, append([]byte(protocolName+"|"), info...))
	psk := make([]byte, 32)
	if _, err := io.ReadFull(reader, psk); err != nil {
		return nil, newErr(ErrNoMemory, "DerivePSK", err)
	}
	return psk, nil
}
