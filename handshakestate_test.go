package noise

import (
	"bytes"
	"errors"
	"testing"
)

func generateStaticKeypair(t *testing.T, dh DHGroup) *KeyPair {
	t.Helper()
	priv, pub, err := dh.GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return &KeyPair{Private: priv, Public: pub}
}

// TestHandshakeNNTransportRoundTrip is scenario S1: no static keys, two
// empty-payload handshake messages, then one transport message in each
// direction.
func TestHandshakeNNTransportRoundTrip(t *testing.T) {
	initiator, err := NewHandshakeState(Config{ProtocolName: "Noise_NN_25519_ChaChaPoly_SHA256", Initiator: true})
	if err != nil {
		t.Fatalf("initiator: %v", err)
	}
	responder, err := NewHandshakeState(Config{ProtocolName: "Noise_NN_25519_ChaChaPoly_SHA256", Initiator: false})
	if err != nil {
		t.Fatalf("responder: %v", err)
	}
	if err := initiator.Start(); err != nil {
		t.Fatalf("initiator.Start: %v", err)
	}
	if err := responder.Start(); err != nil {
		t.Fatalf("responder.Start: %v", err)
	}

	msg1, err := initiator.WriteMessage(nil)
	if err != nil {
		t.Fatalf("initiator.WriteMessage(1): %v", err)
	}
	if _, err := responder.ReadMessage(msg1); err != nil {
		t.Fatalf("responder.ReadMessage(1): %v", err)
	}

	msg2, err := responder.WriteMessage(nil)
	if err != nil {
		t.Fatalf("responder.WriteMessage(2): %v", err)
	}
	if _, err := initiator.ReadMessage(msg2); err != nil {
		t.Fatalf("initiator.ReadMessage(2): %v", err)
	}

	if initiator.GetAction() != ActionSplit || responder.GetAction() != ActionSplit {
		t.Fatalf("both sides should be ready to split")
	}

	iSend, iRecv, err := initiator.Split()
	if err != nil {
		t.Fatalf("initiator.Split: %v", err)
	}
	rSend, rRecv, err := responder.Split()
	if err != nil {
		t.Fatalf("responder.Split: %v", err)
	}

	ct, err := iSend.EncryptWithAd(nil, []byte("hello"))
	if err != nil {
		t.Fatalf("encrypt hello: %v", err)
	}
	pt, err := rRecv.DecryptWithAd(nil, ct)
	if err != nil {
		t.Fatalf("decrypt hello: %v", err)
	}
	if string(pt) != "hello" {
		t.Fatalf("got %q want hello", pt)
	}

	ct, err = rSend.EncryptWithAd(nil, []byte("world"))
	if err != nil {
		t.Fatalf("encrypt world: %v", err)
	}
	pt, err = iRecv.DecryptWithAd(nil, ct)
	if err != nil {
		t.Fatalf("decrypt world: %v", err)
	}
	if string(pt) != "world" {
		t.Fatalf("got %q want world", pt)
	}
}

// TestHandshakeXXFixedEphemeralIsDeterministic is scenario S2's shape: three
// messages over Noise_XX_25519_AESGCM_SHA256 with fixed static keys and
// ephemerals pinned via the test-only fixed-ephemeral hook (grounded on the reference
// implementation's noise_handshakestate_get_fixed_ephemeral_dh_). The pack
// does not carry an official byte-vector fixture, so this asserts the
// property a vector comparison would actually exercise: identical inputs
// produce byte-identical transcripts.
func TestHandshakeXXFixedEphemeralIsDeterministic(t *testing.T) {
	runOnce := func() [][]byte {
		dh := curve25519Group{}
		initStatic := &KeyPair{Private: bytes.Repeat([]byte{0x33}, 32)}
		initStatic.Public, _ = dh.DerivePublic(initStatic.Private)
		respStatic := &KeyPair{Private: bytes.Repeat([]byte{0x44}, 32)}
		respStatic.Public, _ = dh.DerivePublic(respStatic.Private)
		initEph := &KeyPair{Private: bytes.Repeat([]byte{0x11}, 32)}
		initEph.Public, _ = dh.DerivePublic(initEph.Private)
		respEph := &KeyPair{Private: bytes.Repeat([]byte{0x22}, 32)}
		respEph.Public, _ = dh.DerivePublic(respEph.Private)

		initiator, err := NewHandshakeState(Config{ProtocolName: "Noise_XX_25519_AESGCM_SHA256", Initiator: true, StaticKeypair: initStatic})
		if err != nil {
			t.Fatalf("initiator: %v", err)
		}
		responder, err := NewHandshakeState(Config{ProtocolName: "Noise_XX_25519_AESGCM_SHA256", Initiator: false, StaticKeypair: respStatic})
		if err != nil {
			t.Fatalf("responder: %v", err)
		}
		initiator.setFixedEphemeral(initEph)
		responder.setFixedEphemeral(respEph)

		if err := initiator.Start(); err != nil {
			t.Fatalf("initiator.Start: %v", err)
		}
		if err := responder.Start(); err != nil {
			t.Fatalf("responder.Start: %v", err)
		}

		var transcript [][]byte
		msg, err := initiator.WriteMessage([]byte("alpha"))
		if err != nil {
			t.Fatalf("write 1: %v", err)
		}
		transcript = append(transcript, msg)
		if _, err := responder.ReadMessage(msg); err != nil {
			t.Fatalf("read 1: %v", err)
		}

		msg, err = responder.WriteMessage([]byte("beta"))
		if err != nil {
			t.Fatalf("write 2: %v", err)
		}
		transcript = append(transcript, msg)
		if _, err := initiator.ReadMessage(msg); err != nil {
			t.Fatalf("read 2: %v", err)
		}

		msg, err = initiator.WriteMessage([]byte("gamma"))
		if err != nil {
			t.Fatalf("write 3: %v", err)
		}
		transcript = append(transcript, msg)
		if _, err := responder.ReadMessage(msg); err != nil {
			t.Fatalf("read 3: %v", err)
		}

		_, _, err = initiator.Split()
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		return transcript
	}

	t1 := runOnce()
	t2 := runOnce()
	for i := range t1 {
		if !bytes.Equal(t1[i], t2[i]) {
			t.Fatalf("message %d differs across runs with identical fixed ephemerals", i)
		}
	}
}

// TestHandshakeIKpsk2WithPresharedKey is scenario S3's shape: a PSK
// installed on both sides over Noise_IKpsk2_25519_ChaChaPoly_BLAKE2s,
// converging on the same handshake hash and transport keys.
func TestHandshakeIKpsk2WithPresharedKey(t *testing.T) {
	dh := curve25519Group{}
	respStatic := generateStaticKeypair(t, dh)
	initStatic := generateStaticKeypair(t, dh)
	psk := bytes.Repeat([]byte{0x5a}, 32)

	initiator, err := NewHandshakeState(Config{
		ProtocolName: "Noise_IKpsk2_25519_ChaChaPoly_BLAKE2s", Initiator: true,
		StaticKeypair: initStatic, RemoteStatic: respStatic.Public, PresharedKey: psk,
	})
	if err != nil {
		t.Fatalf("initiator: %v", err)
	}
	responder, err := NewHandshakeState(Config{
		ProtocolName: "Noise_IKpsk2_25519_ChaChaPoly_BLAKE2s", Initiator: false,
		StaticKeypair: respStatic, PresharedKey: psk,
	})
	if err != nil {
		t.Fatalf("responder: %v", err)
	}
	if err := initiator.Start(); err != nil {
		t.Fatalf("initiator.Start: %v", err)
	}
	if err := responder.Start(); err != nil {
		t.Fatalf("responder.Start: %v", err)
	}

	msg1, err := initiator.WriteMessage(nil)
	if err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if _, err := responder.ReadMessage(msg1); err != nil {
		t.Fatalf("read 1: %v", err)
	}
	msg2, err := responder.WriteMessage(nil)
	if err != nil {
		t.Fatalf("write 2: %v", err)
	}
	if _, err := initiator.ReadMessage(msg2); err != nil {
		t.Fatalf("read 2: %v", err)
	}

	iHash := initiator.ss.HandshakeHash()
	rHash := responder.ss.HandshakeHash()

	iSend, iRecv, err := initiator.Split()
	if err != nil {
		t.Fatalf("initiator.Split: %v", err)
	}
	rSend, rRecv, err := responder.Split()
	if err != nil {
		t.Fatalf("responder.Split: %v", err)
	}
	if !bytes.Equal(iHash, rHash) {
		t.Fatalf("both sides must converge on the same handshake hash")
	}

	ct, err := iSend.EncryptWithAd(nil, []byte("ping"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	pt, err := rRecv.DecryptWithAd(nil, ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(pt) != "ping" {
		t.Fatalf("got %q want ping", pt)
	}
	_ = rSend
}

// TestHandshakeOneWayNThreeTransportMessages is scenario S4: a one-way
// pattern yields exactly one cipher per side, and it is the same direction
// on both ends.
func TestHandshakeOneWayNThreeTransportMessages(t *testing.T) {
	dh := curve448Group{}
	respStatic := generateStaticKeypair(t, dh)

	initiator, err := NewHandshakeState(Config{ProtocolName: "Noise_N_448_AESGCM_SHA512", Initiator: true, RemoteStatic: respStatic.Public})
	if err != nil {
		t.Fatalf("initiator: %v", err)
	}
	responder, err := NewHandshakeState(Config{ProtocolName: "Noise_N_448_AESGCM_SHA512", Initiator: false, StaticKeypair: respStatic})
	if err != nil {
		t.Fatalf("responder: %v", err)
	}
	if err := initiator.Start(); err != nil {
		t.Fatalf("initiator.Start: %v", err)
	}
	if err := responder.Start(); err != nil {
		t.Fatalf("responder.Start: %v", err)
	}

	msg, err := initiator.WriteMessage([]byte("greeting"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if initiator.GetAction() != ActionSplit {
		t.Fatalf("one-way pattern should be ready to split after its single message")
	}
	payload, err := responder.ReadMessage(msg)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(payload) != "greeting" {
		t.Fatalf("got %q want greeting", payload)
	}

	send, recv, err := initiator.Split()
	if err != nil {
		t.Fatalf("initiator.Split: %v", err)
	}
	if send == nil || recv != nil {
		t.Fatalf("initiator should get only a send cipher")
	}
	rSend, rRecv, err := responder.Split()
	if err != nil {
		t.Fatalf("responder.Split: %v", err)
	}
	if rRecv == nil || rSend != nil {
		t.Fatalf("responder should get only a receive cipher")
	}

	for i, word := range []string{"one", "two", "three"} {
		ct, err := send.EncryptWithAd(nil, []byte(word))
		if err != nil {
			t.Fatalf("encrypt message %d: %v", i, err)
		}
		pt, err := rRecv.DecryptWithAd(nil, ct)
		if err != nil {
			t.Fatalf("decrypt message %d: %v", i, err)
		}
		if string(pt) != word {
			t.Fatalf("message %d: got %q want %q", i, pt, word)
		}
	}
}

func TestHandshakeWriteWhenReadExpectedFails(t *testing.T) {
	initiator, err := NewHandshakeState(Config{ProtocolName: "Noise_NN_25519_ChaChaPoly_SHA256", Initiator: true})
	if err != nil {
		t.Fatalf("initiator: %v", err)
	}
	if err := initiator.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := initiator.WriteMessage(nil); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}
	// Now it's the initiator's turn to read, not write.
	actionBefore := initiator.GetAction()
	if _, err := initiator.WriteMessage(nil); !errors.Is(err, ErrInvalidStateErr) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if initiator.GetAction() != actionBefore {
		t.Fatalf("a rejected call must not mutate the action")
	}
}

func TestHandshakeFailureZeroesSecrets(t *testing.T) {
	initiator, err := NewHandshakeState(Config{ProtocolName: "Noise_NN_25519_ChaChaPoly_SHA256", Initiator: true})
	if err != nil {
		t.Fatalf("initiator: %v", err)
	}
	if err := initiator.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := initiator.WriteMessage(nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	garbage := make([]byte, 32)
	if _, err := initiator.ReadMessage(garbage); err == nil {
		t.Fatal("reading garbage should fail")
	}
	if initiator.GetAction() != ActionFailed {
		t.Fatalf("expected ActionFailed, got %v", initiator.GetAction())
	}

	initiator.free()
	if initiator.e != nil {
		for _, b := range initiator.e.Private {
			if b != 0 {
				t.Fatal("ephemeral private key was not zeroed")
			}
		}
	}
}
