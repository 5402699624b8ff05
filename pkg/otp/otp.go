// Package otp provides sources of one-time numeric codes.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrInvalidRange = errors.New("otp: invalid range")

// Generator draws a uniformly distributed integer from [min, max].
type Generator interface {
	RandomCode(min, max int) (int, error)
}

// CryptoGenerator reads from crypto/rand.
type CryptoGenerator struct{}

func NewCryptoGenerator() *CryptoGenerator {
	return &CryptoGenerator{}
}

func (g *CryptoGenerator) RandomCode(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, min, max)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)+1))
	if err != nil {
		return 0, fmt.Errorf("otp: read random: %w", err)
	}

	return min + int(n.Int64()), nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(min, max int) (int, error)

func (f GeneratorFunc) RandomCode(min, max int) (int, error) {
	return f(min, max)
}
