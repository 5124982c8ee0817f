package noise

import (
	"io"

	"noise/internal/logging"
)

// Role is which side of the handshake this HandshakeState plays.
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

// Action is the next step the state machine expects.
type Action int

const (
	ActionNone Action = iota
	ActionWrite
	ActionRead
	ActionSplit
	ActionFailed
	ActionDone
)

func (a Action) String() string {
	switch a {
	case ActionWrite:
		return "WRITE"
	case ActionRead:
		return "READ"
	case ActionSplit:
		return "SPLIT"
	case ActionFailed:
		return "FAILED"
	case ActionDone:
		return "DONE"
	default:
		return "NO_ACTION"
	}
}

// KeyPair is a present DH keypair; a PublicKey-only value uses just Public.
type KeyPair struct {
	Private []byte
	Public  []byte
}

// Config carries everything that must be installed before Start: keys,
// prologue, and the resolved protocol identifier. It plays the
// role the HandshakeOptions/NegotiationConfig structs play in
// crypto/keyexchange.go and crypto/negotiation.go — the "configuration"
// layer for a library with no on-disk config of its own.
type Config struct {
	// ProtocolName is parsed via ProtocolNameToID if Protocol is nil.
	ProtocolName string
	Protocol     *ProtocolID

	Initiator bool

	StaticKeypair    *KeyPair
	EphemeralKeypair *KeyPair // rare; normally left nil and generated internally
	RemoteStatic     []byte
	RemoteEphemeral  []byte // only meaningful for patterns with an "re" pre-message

	PresharedKey []byte
	Prologue     []byte

	// Rand is the randomness source used for ephemeral generation. Defaults
	// to crypto/rand when nil.
	Rand io.Reader

	Logger *logging.Logger
}

// HandshakeState orchestrates one handshake from construction to Split.
// It is a mutable singleton: no internal synchronization, no suspension
// points. Not safe for concurrent use.
type HandshakeState struct {
	role    Role
	ss      SymmetricState
	dh      DHGroup
	pattern *Pattern

	s  *KeyPair
	e  *KeyPair
	rs []byte
	re []byte

	psk      []byte
	prologue []byte
	rand     io.Reader
	logger   *logging.Logger

	fixedEphemeral []byte // test-only, see handshakestate_test.go

	cursor  int
	action  Action
	started bool
}

// NewHandshakeState constructs a HandshakeState from a Config. Keys and
// prologue are installed here; SetPrologue can still set the prologue before
// Start. A PSK pattern needs its 32-byte PSK in Config.PresharedKey, or
// construction fails with ErrMissingKey, so SetPreSharedKey can only replace
// that PSK before Start.
func NewHandshakeState(cfg Config) (*HandshakeState, error) {
	const op = "NewHandshakeState"
	proto := cfg.Protocol
	if proto == nil {
		p, err := ProtocolNameToID(cfg.ProtocolName)
		if err != nil {
			return nil, newErr(ErrUnknownName, op, err)
		}
		proto = p
	}
	dhGroup, err := dhGroupByID(proto.DH)
	if err != nil {
		return nil, newErr(ErrUnknownID, op, err)
	}
	hashFn, err := hashByID(proto.Hash)
	if err != nil {
		return nil, newErr(ErrUnknownID, op, err)
	}
	name, err := IDToProtocolName(proto)
	if err != nil {
		return nil, newErr(ErrUnknownID, op, err)
	}

	hs := &HandshakeState{
		role:     roleFromBool(cfg.Initiator),
		dh:       dhGroup,
		pattern:  proto.Pattern,
		s:        cfg.StaticKeypair,
		e:        cfg.EphemeralKeypair,
		rs:       cfg.RemoteStatic,
		re:       cfg.RemoteEphemeral,
		psk:      cfg.PresharedKey,
		prologue: cfg.Prologue,
		rand:     cfg.Rand,
		logger:   cfg.Logger,
	}
	hs.ss.initializeSymmetric(hashFn, proto.Cipher, []byte(name))

	if hs.pattern.RequiresPSK && len(hs.psk) != 32 {
		return nil, newErr(ErrMissingKey, op, nil)
	}
	if !hs.pattern.RequiresPSK && len(hs.psk) != 0 {
		return nil, newErr(ErrNotApplicable, op, nil)
	}

	hs.logEvent("new", map[string]interface{}{"pattern": hs.pattern.Name, "initiator": cfg.Initiator})
	return hs, nil
}

func roleFromBool(initiator bool) Role {
	if initiator {
		return RoleInitiator
	}
	return RoleResponder
}

// SetLogger attaches a logger that receives Debug-level trace events for
// handshake lifecycle transitions (start, each message, split); the
// construction event goes only to Config.Logger. It never logs key
// material, h, ck, payloads, or ciphertext.
func (hs *HandshakeState) SetLogger(l *logging.Logger) {
	hs.logger = l
}

func (hs *HandshakeState) logEvent(msg string, fields map[string]interface{}) {
	if hs.logger == nil {
		return
	}
	hs.logger.Debug(msg, fields)
}

// SetPrologue buffers prologue data, mixed into h by Start. Calling this
// after Start fails with ErrInvalidState.
func (hs *HandshakeState) SetPrologue(prologue []byte) error {
	if hs.started {
		return newErr(ErrInvalidState, "HandshakeState.SetPrologue", nil)
	}
	hs.prologue = prologue
	return nil
}

// SetPreSharedKey replaces the 32-byte PSK given to NewHandshakeState for a
// PSK pattern.
// Calling this on a non-PSK pattern fails with ErrNotApplicable; a wrong
// length fails with ErrInvalidLength.
func (hs *HandshakeState) SetPreSharedKey(psk []byte) error {
	const op = "HandshakeState.SetPreSharedKey"
	if hs.started {
		return newErr(ErrInvalidState, op, nil)
	}
	if !hs.pattern.RequiresPSK {
		return newErr(ErrNotApplicable, op, nil)
	}
	if len(psk) != 32 {
		return newErr(ErrInvalidLength, op, nil)
	}
	hs.psk = psk
	return nil
}

// setFixedEphemeral installs a deterministic ephemeral keypair, bypassing
// GenerateKeypair. It exists only for test vectors that require
// reproducing the reference implementation's exact transcript and has no
// reachable path from NewHandshakeState or any other exported constructor.
func (hs *HandshakeState) setFixedEphemeral(kp *KeyPair) {
	hs.fixedEphemeral = append([]byte(nil), kp.Private...)
	hs.e = kp
}

// NeedsLocalStaticKeypair reports whether the pattern requires a local
// static keypair to be installed before Start.
func (hs *HandshakeState) NeedsLocalStaticKeypair() bool {
	if containsToken(hs.premessageForRole(hs.role), TokenS) {
		return true
	}
	for i, m := range hs.pattern.Messages {
		if hs.senderIsLocal(i) && containsToken(m, TokenS) {
			return true
		}
	}
	return false
}

// NeedsLocalEphemeralKeypair reports whether the pattern requires a local
// ephemeral keypair to be supplied ahead of time (rare).
func (hs *HandshakeState) NeedsLocalEphemeralKeypair() bool {
	return containsToken(hs.premessageForRole(hs.role), TokenE)
}

// NeedsRemoteStaticPublicKey reports whether the pattern requires the
// remote static public key to be known before Start.
func (hs *HandshakeState) NeedsRemoteStaticPublicKey() bool {
	return containsToken(hs.premessageForRole(otherRole(hs.role)), TokenS)
}

func (hs *HandshakeState) premessageForRole(r Role) []Token {
	if r == RoleInitiator {
		return hs.pattern.PreMessageInitiator
	}
	return hs.pattern.PreMessageResponder
}

func otherRole(r Role) Role {
	if r == RoleInitiator {
		return RoleResponder
	}
	return RoleInitiator
}

func containsToken(tokens []Token, t Token) bool {
	for _, tok := range tokens {
		if tok == t {
			return true
		}
	}
	return false
}

// senderIsLocal reports whether this side sends pattern.Messages[idx],
// given the fixed alternation starting with the initiator at index 0.
func (hs *HandshakeState) senderIsLocal(idx int) bool {
	initiatorSends := idx%2 == 0
	if hs.role == RoleInitiator {
		return initiatorSends
	}
	return !initiatorSends
}

// GetLocalKeypair returns the installed local static keypair, if any.
func (hs *HandshakeState) GetLocalKeypair() *KeyPair { return hs.s }

// GetRemotePublicKey returns the known remote static public key, if any.
func (hs *HandshakeState) GetRemotePublicKey() []byte { return hs.rs }

// GetAction returns the next expected step.
func (hs *HandshakeState) GetAction() Action { return hs.action }

// Start processes the prologue and pre-messages and sets the initial
// action.
func (hs *HandshakeState) Start() error {
	const op = "HandshakeState.Start"
	if hs.started {
		return hs.fail(newErr(ErrInvalidState, op, nil))
	}
	hs.ss.MixHash(hs.prologue)

	if err := hs.applyPreMessages(RoleInitiator); err != nil {
		return hs.fail(newErr(ErrMissingKey, op, err))
	}
	if err := hs.applyPreMessages(RoleResponder); err != nil {
		return hs.fail(newErr(ErrMissingKey, op, err))
	}

	hs.started = true
	if hs.senderIsLocal(0) {
		hs.action = ActionWrite
	} else {
		hs.action = ActionRead
	}
	hs.logEvent("start", map[string]interface{}{"action": hs.action.String()})
	return nil
}

// applyPreMessages mixes the pre-message tokens belonging to side into h,
// using the local public key when side == hs.role, the remote public key
// otherwise.
func (hs *HandshakeState) applyPreMessages(side Role) error {
	tokens := hs.premessageForRole(side)
	local := side == hs.role
	for _, tok := range tokens {
		var pub []byte
		switch tok {
		case TokenE:
			if local {
				if hs.e == nil {
					return newErr(ErrMissingKey, "applyPreMessages", nil)
				}
				pub = hs.e.Public
			} else {
				if hs.re == nil {
					return newErr(ErrMissingKey, "applyPreMessages", nil)
				}
				pub = hs.re
			}
		case TokenS:
			if local {
				if hs.s == nil {
					return newErr(ErrMissingKey, "applyPreMessages", nil)
				}
				pub = hs.s.Public
			} else {
				if hs.rs == nil {
					return newErr(ErrMissingKey, "applyPreMessages", nil)
				}
				pub = hs.rs
			}
		default:
			continue
		}
		hs.ss.MixHash(pub)
	}
	return nil
}

func (hs *HandshakeState) fail(err error) error {
	hs.action = ActionFailed
	hs.free()
	return err
}

// maxMessageSize is the Noise framework limit.
const maxMessageSize = 65535

// WriteMessage produces the next handshake message. payload may be empty
// but is always run through EncryptAndHash, matching the reference
// implementation.
func (hs *HandshakeState) WriteMessage(payload []byte) ([]byte, error) {
	const op = "HandshakeState.WriteMessage"
	if hs.action != ActionWrite {
		return nil, newErr(ErrInvalidState, op, nil)
	}

	msg := hs.pattern.Messages[hs.cursor]
	var out []byte
	for _, tok := range msg {
		switch tok {
		case TokenE:
			if err := hs.ensureLocalEphemeral(); err != nil {
				return nil, hs.fail(newErr(ErrNoMemory, op, err))
			}
			out = append(out, hs.e.Public...)
			hs.ss.MixHash(hs.e.Public)
			if hs.pattern.RequiresPSK {
				if err := hs.ss.MixKey(hs.e.Public); err != nil {
					return nil, hs.fail(newErr(err.(*Error).Code, op, err))
				}
			}
		case TokenS:
			if hs.s == nil {
				return nil, hs.fail(newErr(ErrMissingKey, op, nil))
			}
			ct, err := hs.ss.EncryptAndHash(hs.s.Public)
			if err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
			out = append(out, ct...)
		case TokenEE, TokenES, TokenSE, TokenSS:
			if err := hs.mixDH(tok); err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
		case TokenPSK:
			if err := hs.ss.MixKeyAndHash(hs.psk); err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
		}
	}

	ct, err := hs.ss.EncryptAndHash(payload)
	if err != nil {
		return nil, hs.fail(newErr(err.(*Error).Code, op, err))
	}
	out = append(out, ct...)

	if len(out) > maxMessageSize {
		return nil, hs.fail(newErr(ErrInvalidLength, op, nil))
	}

	hs.logEvent("write_message", map[string]interface{}{"index": hs.cursor, "bytes": len(out)})
	hs.advance()
	return out, nil
}

// ReadMessage consumes the next handshake message and returns its payload.
func (hs *HandshakeState) ReadMessage(message []byte) ([]byte, error) {
	const op = "HandshakeState.ReadMessage"
	if hs.action != ActionRead {
		return nil, newErr(ErrInvalidState, op, nil)
	}
	if len(message) > maxMessageSize {
		return nil, hs.fail(newErr(ErrInvalidLength, op, nil))
	}

	msg := hs.pattern.Messages[hs.cursor]
	buf := message
	dhlen := hs.dh.DHLen()

	for _, tok := range msg {
		switch tok {
		case TokenE:
			if len(buf) < dhlen {
				return nil, hs.fail(newErr(ErrInvalidLength, op, nil))
			}
			hs.re = append([]byte(nil), buf[:dhlen]...)
			buf = buf[dhlen:]
			hs.ss.MixHash(hs.re)
			if hs.pattern.RequiresPSK {
				if err := hs.ss.MixKey(hs.re); err != nil {
					return nil, hs.fail(newErr(err.(*Error).Code, op, err))
				}
			}
		case TokenS:
			want := dhlen
			if hs.ss.cs.HasKey() {
				want += 16
			}
			if len(buf) < want {
				return nil, hs.fail(newErr(ErrInvalidLength, op, nil))
			}
			rs, err := hs.ss.DecryptAndHash(buf[:want])
			if err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
			hs.rs = rs
			buf = buf[want:]
		case TokenEE, TokenES, TokenSE, TokenSS:
			if err := hs.mixDH(tok); err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
		case TokenPSK:
			if err := hs.ss.MixKeyAndHash(hs.psk); err != nil {
				return nil, hs.fail(newErr(err.(*Error).Code, op, err))
			}
		}
	}

	payload, err := hs.ss.DecryptAndHash(buf)
	if err != nil {
		return nil, hs.fail(newErr(err.(*Error).Code, op, err))
	}

	hs.logEvent("read_message", map[string]interface{}{"index": hs.cursor, "bytes": len(message)})
	hs.advance()
	return payload, nil
}

func (hs *HandshakeState) ensureLocalEphemeral() error {
	if hs.e != nil {
		return nil
	}
	priv, pub, err := hs.dh.GenerateKeypair(hs.rand)
	if err != nil {
		return err
	}
	hs.e = &KeyPair{Private: priv, Public: pub}
	return nil
}

func (hs *HandshakeState) mixDH(tok Token) error {
	initiator := hs.role == RoleInitiator
	var priv, pub []byte
	switch tok {
	case TokenEE:
		priv, pub = hs.e.Private, hs.re
	case TokenES:
		if initiator {
			priv, pub = hs.e.Private, hs.rs
		} else {
			priv, pub = hs.s.Private, hs.re
		}
	case TokenSE:
		if initiator {
			priv, pub = hs.s.Private, hs.re
		} else {
			priv, pub = hs.e.Private, hs.rs
		}
	case TokenSS:
		priv, pub = hs.s.Private, hs.rs
	}
	if priv == nil || pub == nil {
		return newErr(ErrMissingKey, "mixDH", nil)
	}
	shared, err := hs.dh.DH(priv, pub)
	if err != nil {
		return err
	}
	err = hs.ss.MixKey(shared)
	zero(shared)
	return err
}

// advance moves the cursor and sets the next action.
func (hs *HandshakeState) advance() {
	hs.cursor++
	if hs.cursor >= len(hs.pattern.Messages) {
		hs.action = ActionSplit
		return
	}
	if hs.senderIsLocal(hs.cursor) {
		hs.action = ActionWrite
	} else {
		hs.action = ActionRead
	}
}

// Split derives the transport CipherState pair and ends the handshake.
// For one-way patterns the side that only needs one direction gets that
// CipherState back and the other is discarded.
func (hs *HandshakeState) Split() (send, recv *CipherState, err error) {
	const op = "HandshakeState.Split"
	if hs.action != ActionSplit {
		return nil, nil, newErr(ErrInvalidState, op, nil)
	}
	c1, c2, splitErr := hs.ss.Split()
	if splitErr != nil {
		return nil, nil, hs.fail(newErr(splitErr.(*Error).Code, op, splitErr))
	}

	if hs.pattern.IsOneWay {
		if hs.role == RoleInitiator {
			send, recv = c1, nil
			c2.Free()
		} else {
			send, recv = nil, c1
			c2.Free()
		}
	} else if hs.role == RoleInitiator {
		send, recv = c1, c2
	} else {
		send, recv = c2, c1
	}

	hs.action = ActionDone
	hs.logEvent("split", nil)
	hs.free()
	return send, recv, nil
}

// free wipes local secret material once the handshake is done or failed.
func (hs *HandshakeState) free() {
	if hs.s != nil {
		zero(hs.s.Private)
	}
	if hs.e != nil {
		zero(hs.e.Private)
	}
	zero(hs.psk)
	zero(hs.fixedEphemeral)
}
