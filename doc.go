// Package noise implements the Noise Protocol Framework: a primitive
// registry for Diffie-Hellman groups, AEAD ciphers, and hash functions; a
// protocol-name codec; the fundamental interactive and one-way handshake
// patterns (with PSK modifiers); and the SymmetricState/CipherState/
// HandshakeState layering that turns a pattern and a set of keys into a
// pair of transport CipherStates.
//
// A typical handshake looks like:
//
//	hs, err := noise.NewHandshakeState(noise.Config{
//		ProtocolName: "Noise_XX_25519_ChaChaPoly_SHA256",
//		Initiator:    true,
//		StaticKeypair: localStatic,
//	})
//	if err != nil { ... }
//	if err := hs.Start(); err != nil { ... }
//	for hs.GetAction() != noise.ActionSplit {
//		switch hs.GetAction() {
//		case noise.ActionWrite:
//			msg, err := hs.WriteMessage(nil)
//			...
//		case noise.ActionRead:
//			payload, err := hs.ReadMessage(received)
//			...
//		}
//	}
//	send, recv, err := hs.Split()
//
// Errors are reported as *Error values carrying one of the ErrorCode
// constants, so callers can compare with errors.Is against the sentinel
// values (ErrMACFailureErr, ErrInvalidStateErr, and so on) without string
// matching.
package noise
