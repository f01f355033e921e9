package common

import (
	"math/rand"
	"time"
)

// GenerateTrxNo returns a short alphanumeric reference for ledger entries.
func GenerateTrxNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 10)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return string(result)
}
