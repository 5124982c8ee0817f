package noise

import (
	"errors"
	"testing"
)

func TestProtocolNameRoundTrip(t *testing.T) {
	names := []string{
		"Noise_NN_25519_ChaChaPoly_SHA256",
		"Noise_XX_25519_ChaChaPoly_SHA256",
		"Noise_XX_25519_AESGCM_SHA256",
		"Noise_IKpsk2_25519_ChaChaPoly_BLAKE2s",
		"Noise_N_448_AESGCM_SHA512",
		"Noise_XXpsk3_448_ChaChaPoly_BLAKE2b",
	}
	for _, name := range names {
		id, err := ProtocolNameToID(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := IDToProtocolName(id)
		if err != nil {
			t.Fatalf("%s: IDToProtocolName: %v", name, err)
		}
		if got != name {
			t.Fatalf("round trip mismatch: got %q want %q", got, name)
		}
	}
}

func TestProtocolNameAcceptsNoisePSKPrefix(t *testing.T) {
	id, err := ProtocolNameToID("NoisePSK_IKpsk2_25519_ChaChaPoly_SHA256")
	if err != nil {
		t.Fatalf("NoisePSK_ prefix: %v", err)
	}
	name, err := IDToProtocolName(id)
	if err != nil {
		t.Fatalf("IDToProtocolName: %v", err)
	}
	if name != "Noise_IKpsk2_25519_ChaChaPoly_SHA256" {
		t.Fatalf("canonical form should drop the legacy prefix, got %q", name)
	}
}

func TestProtocolNameRejectsUnknownPrefix(t *testing.T) {
	_, err := ProtocolNameToID("Foo_XX_25519_ChaChaPoly_SHA256")
	if !errors.Is(err, ErrUnknownNameErr) {
		t.Fatalf("expected ErrUnknownName, got %v", err)
	}
}

func TestProtocolNameAcceptsPSKPrefixOnBarePattern(t *testing.T) {
	id, err := ProtocolNameToID("NoisePSK_XX_25519_ChaChaPoly_SHA256")
	if err != nil {
		t.Fatalf("NoisePSK_ prefix on a psk-suffix-free pattern: %v", err)
	}
	if id.Prefix != PrefixPSK {
		t.Fatalf("expected Prefix=PrefixPSK, got %v", id.Prefix)
	}
	name, err := IDToProtocolName(id)
	if err != nil {
		t.Fatalf("IDToProtocolName: %v", err)
	}
	if name != "Noise_XX_25519_ChaChaPoly_SHA256" {
		t.Fatalf("canonical form should drop the legacy prefix, got %q", name)
	}
}

func TestProtocolNameRejectsWrongComponentCount(t *testing.T) {
	cases := []string{
		"Noise_XX_25519_ChaChaPoly",
		"Noise_XX_25519_ChaChaPoly_SHA256_extra",
		"Noise_XX",
	}
	for _, name := range cases {
		if _, err := ProtocolNameToID(name); !errors.Is(err, ErrUnknownNameErr) {
			t.Fatalf("%s: expected ErrUnknownName, got %v", name, err)
		}
	}
}

func TestProtocolNameRejectsUnknownPrimitive(t *testing.T) {
	cases := []string{
		"Noise_XX_9999_ChaChaPoly_SHA256",
		"Noise_XX_25519_Unknown_SHA256",
		"Noise_XX_25519_ChaChaPoly_Unknown",
		"Noise_ZZ_25519_ChaChaPoly_SHA256",
	}
	for _, name := range cases {
		if _, err := ProtocolNameToID(name); !errors.Is(err, ErrUnknownNameErr) {
			t.Fatalf("%s: expected ErrUnknownName, got %v", name, err)
		}
	}
}

func TestNameToIDAndIDToNameRoundTrip(t *testing.T) {
	id, err := NameToID(CategoryDH, "25519")
	if err != nil {
		t.Fatalf("NameToID DH: %v", err)
	}
	name, err := IDToName(CategoryDH, id)
	if err != nil {
		t.Fatalf("IDToName DH: %v", err)
	}
	if name != "25519" {
		t.Fatalf("got %q want 25519", name)
	}

	id, err = NameToID(CategoryPattern, "XX")
	if err != nil {
		t.Fatalf("NameToID pattern: %v", err)
	}
	name, err = IDToName(CategoryPattern, id)
	if err != nil {
		t.Fatalf("IDToName pattern: %v", err)
	}
	if name != "XX" {
		t.Fatalf("got %q want XX", name)
	}
}

func TestNameToIDRejectsUnknownPatternName(t *testing.T) {
	if _, err := NameToID(CategoryPattern, "NotAPattern"); !errors.Is(err, ErrUnknownNameErr) {
		t.Fatalf("expected ErrUnknownName, got %v", err)
	}
}
