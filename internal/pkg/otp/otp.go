// Package otp generates fixed-width numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator draws codes uniformly from [0, 10^Digits) and zero-pads them.
type Generator struct {
	Digits int
}

func NewGenerator(digits int) (*Generator, error) {
	if digits < 4 || digits > 9 {
		return nil, fmt.Errorf("otp digits must be between 4 and 9, got %d", digits)
	}
	return &Generator{Digits: digits}, nil
}

func (g *Generator) Generate() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.Digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", g.Digits, n.Int64()), nil
}
