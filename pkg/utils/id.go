package utils

import (
	"crypto/rand"
	"fmt"
)

const (
	paymentIDPrefix = "pay_"
	paymentIDLength = 12
	idAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GeneratePaymentID returns a new payment session identifier: "pay_"
// followed by 12 random alphanumeric characters.
func GeneratePaymentID() (string, error) {
	buf := make([]byte, paymentIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate payment id: %w", err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return paymentIDPrefix + string(buf), nil
}
