package order

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
)

const (
	orderNumberPrefix   = "ORD-"
	orderNumberLength   = 8
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`)

// IsValidOrderNumber checks the ORD-XXXXXXXX format
func IsValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}

// NumberGenerator produces random order numbers. Uniqueness is the caller's concern.
type NumberGenerator struct {
	source io.Reader
}

// NewNumberGenerator returns a generator backed by crypto/rand
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{source: rand.Reader}
}

// NewNumberGeneratorFrom returns a generator reading entropy from r
func NewNumberGeneratorFrom(r io.Reader) *NumberGenerator {
	return &NumberGenerator{source: r}
}

// Generate returns a new ORD-XXXXXXXX candidate
func (g *NumberGenerator) Generate() (string, error) {
	buf := make([]byte, orderNumberLength)
	out := make([]byte, orderNumberLength)
	alphabetLen := byte(len(orderNumberAlphabet))
	// bytes at or above 252 (7*36) are skipped
	limit := byte(256 - 256%int(alphabetLen))

	for i := 0; i < orderNumberLength; {
		if _, err := io.ReadFull(g.source, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out[i] = orderNumberAlphabet[b%alphabetLen]
			i++
			if i == orderNumberLength {
				break
			}
		}
	}
	return orderNumberPrefix + string(out), nil
}
