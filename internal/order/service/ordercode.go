package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	codePrefix   = "R"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeRandLen  = 8
)

// newOrderCode builds a customer-facing order code: a fixed prefix, a random
// alphanumeric block, and a base-36 suffix derived from the current time.
// Uniqueness is enforced by the storage layer; callers retry on collision.
func newOrderCode(now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(codePrefix)

	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeRandLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}

	b.WriteString(strings.ToUpper(strconv.FormatInt(now.Unix(), 36)))
	return b.String(), nil
}
