package testutil

import "sync"

// DefaultRunToken is used when a scenario pins no token.
const DefaultRunToken = "test-run-default"

// FixedTokenGenerator returns the same run token on every call.
//
// Stateless; safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator returns a generator for token, or for
// DefaultRunToken when token is empty.
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = DefaultRunToken
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequenceTokenGenerator hands out predetermined tokens in order and
// panics once they run out, so a test that starts more runs than it
// planned for fails loudly.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewSequenceTokenGenerator creates a generator over tokens.
func NewSequenceTokenGenerator(tokens ...string) *SequenceTokenGenerator {
	return &SequenceTokenGenerator{tokens: tokens}
}

// Generate returns the next token.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("SequenceTokenGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
