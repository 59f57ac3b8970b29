// Package codegen generates one-time security codes: 6-digit numeric challenge
// answers and 6-character mixed-alphabet verification codes.
// Uses crypto/rand for randomness; if that fails, a math/rand fallback keeps the
// length and charset contract so callers never observe a generation error.
package codegen

import (
	"crypto/rand"
	"log"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// CodeLength is the length of every generated code, numeric or mixed.
	CodeLength = 6

	digits  = "0123456789"
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// Symbols is the fixed symbol set for mixed verification codes.
	Symbols = "!@#$%&*"
)

var (
	fallbackMu  sync.Mutex
	fallbackRNG = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
)

// Numeric returns a 6-digit code, each digit drawn independently and uniformly
// from 0-9 (duplicates allowed). Never fails.
func Numeric() string {
	idx := randomIndexes(CodeLength, len(digits))
	b := make([]byte, CodeLength)
	for i, n := range idx {
		b[i] = digits[n]
	}
	return string(b)
}

// Mixed returns a 6-character code containing at least one digit, one letter
// (mixed case), and one symbol from Symbols; the remaining positions are drawn
// uniformly from the union of all three sets and the result is shuffled with an
// unbiased Fisher-Yates pass. Never fails.
func Mixed() string {
	union := digits + letters + Symbols

	b := make([]byte, 0, CodeLength)
	b = append(b, digits[randomIndex(len(digits))])
	b = append(b, letters[randomIndex(len(letters))])
	b = append(b, Symbols[randomIndex(len(Symbols))])
	for len(b) < CodeLength {
		b = append(b, union[randomIndex(len(union))])
	}
	shuffle(b)
	return string(b)
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Suffix returns an n-character lowercase alphanumeric suffix for building
// record identifiers. Uniqueness is probabilistic, suited to session-scoped
// keys, not cryptographic tokens. Never fails.
func Suffix(n int) string {
	idx := randomIndexes(n, len(idAlphabet))
	b := make([]byte, n)
	for i, v := range idx {
		b[i] = idAlphabet[v]
	}
	return string(b)
}

// Display renders a numeric answer for presentation by spacing its digits
// (e.g. "123456" -> "1 2 3 4 5 6"). The underlying answer used for comparison
// is unchanged.
func Display(answer string) string {
	parts := strings.Split(answer, "")
	return strings.Join(parts, " ")
}

// shuffle permutes b in place (Fisher-Yates, unbiased).
func shuffle(b []byte) {
	for i := len(b) - 1; i > 0; i-- {
		j := randomIndex(i + 1)
		b[i], b[j] = b[j], b[i]
	}
}

// randomIndex returns a uniform index in [0, n).
func randomIndex(n int) int {
	return randomIndexes(1, n)[0]
}

// randomIndexes returns count uniform indexes in [0, n), preferring crypto/rand
// with rejection sampling and falling back to math/rand on read failure.
func randomIndexes(count, n int) []int {
	out := make([]int, 0, count)
	// Rejection threshold: largest multiple of n that fits a byte.
	max := 256 - (256 % n)
	buf := make([]byte, count*2)
	for len(out) < count {
		if _, err := rand.Read(buf); err != nil {
			log.Printf("codegen: crypto/rand unavailable, using fallback generator: %v", err)
			return fallbackIndexes(count, n)
		}
		for _, v := range buf {
			if int(v) >= max {
				continue
			}
			out = append(out, int(v)%n)
			if len(out) == count {
				break
			}
		}
	}
	return out
}

func fallbackIndexes(count, n int) []int {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	out := make([]int, count)
	for i := range out {
		out[i] = fallbackRNG.Intn(n)
	}
	return out
}
