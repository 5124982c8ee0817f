package noise

import (
	"strconv"
	"strings"
	"sync"
)

// Token is a single mix operation within a message pattern (GLOSSARY).
type Token int

const (
	TokenE Token = iota
	TokenS
	TokenEE
	TokenES
	TokenSE
	TokenSS
	TokenPSK
)

// MessagePattern is the ordered list of tokens exchanged in one handshake
// message.
type MessagePattern []Token

// Pattern is the immutable description of a handshake shape.
type Pattern struct {
	Name                string
	PreMessageInitiator []Token
	PreMessageResponder []Token
	Messages            []MessagePattern
	RequiresPSK         bool
	IsOneWay            bool
}

// basePatterns holds the fundamental patterns before any psk modifier is
// applied, keyed by their bare name (e.g. "IK", "NN", "N").
var basePatterns = map[string]*Pattern{
	// One-way patterns: only the initiator ever sends.
	"N": {
		Name:                "N",
		PreMessageResponder: []Token{TokenS},
		Messages:            []MessagePattern{{TokenE, TokenES}},
		IsOneWay:            true,
	},
	"K": {
		Name:                "K",
		PreMessageInitiator: []Token{TokenS},
		PreMessageResponder: []Token{TokenS},
		Messages:            []MessagePattern{{TokenE, TokenES, TokenSS}},
		IsOneWay:            true,
	},
	"X": {
		Name:                "X",
		PreMessageResponder: []Token{TokenS},
		Messages:            []MessagePattern{{TokenE, TokenES, TokenS, TokenSS}},
		IsOneWay:            true,
	},

	// Interactive patterns.
	"NN": {
		Name: "NN",
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE},
		},
	},
	"NK": {
		Name:                "NK",
		PreMessageResponder: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE, TokenES},
			{TokenE, TokenEE},
		},
	},
	"NX": {
		Name: "NX",
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE, TokenS, TokenES},
		},
	},
	"XN": {
		Name: "XN",
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE},
			{TokenS, TokenSE},
		},
	},
	"XK": {
		Name:                "XK",
		PreMessageResponder: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE, TokenES},
			{TokenE, TokenEE},
			{TokenS, TokenSE},
		},
	},
	"XX": {
		Name: "XX",
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE, TokenS, TokenES},
			{TokenS, TokenSE},
		},
	},
	"KN": {
		Name:                "KN",
		PreMessageInitiator: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"KK": {
		Name:                "KK",
		PreMessageInitiator: []Token{TokenS},
		PreMessageResponder: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE, TokenES, TokenSS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"KX": {
		Name:                "KX",
		PreMessageInitiator: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE},
			{TokenE, TokenEE, TokenSE, TokenS, TokenES},
		},
	},
	"IN": {
		Name: "IN",
		Messages: []MessagePattern{
			{TokenE, TokenS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"IK": {
		Name:                "IK",
		PreMessageResponder: []Token{TokenS},
		Messages: []MessagePattern{
			{TokenE, TokenES, TokenS, TokenSS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"IX": {
		Name: "IX",
		Messages: []MessagePattern{
			{TokenE, TokenS},
			{TokenE, TokenEE, TokenSE, TokenS, TokenES},
		},
	},
}

func clonePattern(p *Pattern, name string) *Pattern {
	out := &Pattern{
		Name:                name,
		PreMessageInitiator: append([]Token(nil), p.PreMessageInitiator...),
		PreMessageResponder: append([]Token(nil), p.PreMessageResponder...),
		Messages:            make([]MessagePattern, len(p.Messages)),
		IsOneWay:            p.IsOneWay,
	}
	for i, m := range p.Messages {
		out.Messages[i] = append(MessagePattern(nil), m...)
	}
	return out
}

// LookupPattern resolves a bare pattern token (as it appears between the
// "Noise_" prefix and the DH component, e.g. "XX", "IKpsk2") into a Pattern.
// The psk modifier, when present, is of the form "psk<n>": n == 0 puts a psk
// token at the start of the first message, and n > 0 appends one to the end
// of the n-th message (Messages[n-1]), per the Noise specification's PSK
// modifier rule.
func LookupPattern(token string) (*Pattern, error) {
	base, pskIndex, hasPSK, err := splitPSKSuffix(token)
	if err != nil {
		return nil, err
	}
	proto, ok := basePatterns[base]
	if !ok {
		return nil, newErr(ErrUnknownName, "LookupPattern", nil)
	}
	p := clonePattern(proto, token)
	if !hasPSK {
		return p, nil
	}
	if pskIndex < 0 || pskIndex > len(p.Messages) {
		return nil, newErr(ErrUnknownName, "LookupPattern", nil)
	}
	p.RequiresPSK = true
	if pskIndex == 0 {
		p.Messages[0] = append(MessagePattern{TokenPSK}, p.Messages[0]...)
	} else {
		msg := p.Messages[pskIndex-1]
		p.Messages[pskIndex-1] = append(append(MessagePattern(nil), msg...), TokenPSK)
	}
	return p, nil
}

// splitPSKSuffix splits e.g. "IKpsk2" into ("IK", 2, true, nil) and "XX"
// into ("XX", 0, false, nil).
func splitPSKSuffix(token string) (base string, index int, has bool, err error) {
	idx := strings.Index(token, "psk")
	if idx < 0 {
		return token, 0, false, nil
	}
	base = token[:idx]
	digits := token[idx+3:]
	if digits == "" {
		return "", 0, false, newErr(ErrUnknownName, "splitPSKSuffix", nil)
	}
	n, convErr := strconv.Atoi(digits)
	if convErr != nil || n < 0 {
		return "", 0, false, newErr(ErrUnknownName, "splitPSKSuffix", convErr)
	}
	return base, n, true, nil
}

// patternRegistry lazily assigns stable integer ids to full pattern token
// strings (including any psk suffix) in first-registration order, so
// IDToName/NameToID(CategoryPattern, ...) round-trip within a process. The
// fundamental, psk-free patterns are pre-seeded so lookups for them are
// stable without requiring a prior NameToID call.
var patternRegistry = struct {
	mu     sync.Mutex
	byName map[string]int
	byID   []string
}{byName: make(map[string]int)}

func init() {
	seed := []string{"N", "K", "X", "NN", "NK", "NX", "XN", "XK", "XX", "KN", "KK", "KX", "IN", "IK", "IX"}
	for _, name := range seed {
		registerPatternName(name)
	}
}

func registerPatternName(name string) int {
	patternRegistry.mu.Lock()
	defer patternRegistry.mu.Unlock()
	if id, ok := patternRegistry.byName[name]; ok {
		return id
	}
	id := len(patternRegistry.byID)
	patternRegistry.byName[name] = id
	patternRegistry.byID = append(patternRegistry.byID, name)
	return id
}

func patternIDForName(name string) (int, bool) {
	patternRegistry.mu.Lock()
	defer patternRegistry.mu.Unlock()
	id, ok := patternRegistry.byName[name]
	return id, ok
}

func patternNameForID(id int) (string, bool) {
	patternRegistry.mu.Lock()
	defer patternRegistry.mu.Unlock()
	if id < 0 || id >= len(patternRegistry.byID) {
		return "", false
	}
	return patternRegistry.byID[id], true
}
