package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	numberBytes  = "0123456789"
	letterBytes  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanumeric = letterBytes + numberBytes
)

func GenerateRandomString(length int) string {
	return generateRandom(length, alphanumeric)
}

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateRideNumber produces a human-quotable ride identifier, e.g.
// TS-20260828-4F7K2Q.
func GenerateRideNumber() string {
	return fmt.Sprintf("TS-%s-%s", time.Now().Format("20060102"), GenerateRandomString(6))
}

// GenerateTransactionReference produces a globally unique ledger reference.
// References are unique-indexed so a retried write cannot create a duplicate
// audit row.
func GenerateTransactionReference(txType string) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(txType), uuid.NewString())
}
