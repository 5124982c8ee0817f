package noise

import "strings"

// ProtocolID is the 5-tuple protocol identifier: a prefix, the
// resolved Pattern, and the three primitive ids.
type ProtocolID struct {
	Prefix  PrefixID
	Pattern *Pattern
	DH      DHID
	Cipher  CipherID
	Hash    HashID
}

// ProtocolNameToID parses a canonical Noise protocol name into its
// identifier. Both the standard "Noise_" prefix and the legacy
// "NoisePSK_" prefix (kept for compatibility with the reference
// implementation's sample vectors) are accepted.
func ProtocolNameToID(name string) (*ProtocolID, error) {
	const op = "ProtocolNameToID"
	prefix := PrefixStandard
	rest := name
	switch {
	case strings.HasPrefix(name, "NoisePSK_"):
		prefix = PrefixPSK
		rest = strings.TrimPrefix(name, "NoisePSK_")
	case strings.HasPrefix(name, "Noise_"):
		rest = strings.TrimPrefix(name, "Noise_")
	default:
		return nil, newErr(ErrUnknownName, op, nil)
	}

	parts := strings.Split(rest, "_")
	if len(parts) != 4 {
		return nil, newErr(ErrUnknownName, op, nil)
	}
	patternToken, dhToken, cipherToken, hashToken := parts[0], parts[1], parts[2], parts[3]

	pattern, err := LookupPattern(patternToken)
	if err != nil {
		return nil, newErr(ErrUnknownName, op, err)
	}
	registerPatternName(patternToken)

	dhID, ok := dhByName[dhToken]
	if !ok {
		return nil, newErr(ErrUnknownName, op, nil)
	}
	cipherID, ok := cipherByName[cipherToken]
	if !ok {
		return nil, newErr(ErrUnknownName, op, nil)
	}
	hashID, ok := hashByName[hashToken]
	if !ok {
		return nil, newErr(ErrUnknownName, op, nil)
	}

	return &ProtocolID{
		Prefix:  prefix,
		Pattern: pattern,
		DH:      dhID,
		Cipher:  cipherID,
		Hash:    hashID,
	}, nil
}

// IDToProtocolName serializes a ProtocolID back to its canonical name
// string. The canonical form always uses the "Noise_" prefix, even if the
// id was produced by parsing a "NoisePSK_"-prefixed name.
func IDToProtocolName(id *ProtocolID) (string, error) {
	const op = "IDToProtocolName"
	if id == nil || id.Pattern == nil {
		return "", newErr(ErrUnknownID, op, nil)
	}
	dhName, ok := dhNames[id.DH]
	if !ok {
		return "", newErr(ErrUnknownID, op, nil)
	}
	cipherName, ok := cipherNames[id.Cipher]
	if !ok {
		return "", newErr(ErrUnknownID, op, nil)
	}
	hashName, ok := hashNames[id.Hash]
	if !ok {
		return "", newErr(ErrUnknownID, op, nil)
	}
	return "Noise_" + id.Pattern.Name + "_" + dhName + "_" + cipherName + "_" + hashName, nil
}
