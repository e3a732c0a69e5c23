package kernel

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	orderNumberPrefix       = "ORD"
	orderNumberSuffixLength = 6
	referenceAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewOrderNumber generates a human-readable order number of the form
// ORD-YYYYMMDD-XXXXXX, where the suffix is a random upper-case alphanumeric
// string. Order numbers are used as external tracking references; uniqueness
// is enforced by the orders table.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.Format("20060102"), randomReference(orderNumberSuffixLength))
}

// NewConfirmationCode generates a pickup confirmation code with the given
// prefix, e.g. "PU7F3K9Q2B".
func NewConfirmationCode(prefix string) string {
	return prefix + randomReference(8)
}

func randomReference(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for range length {
		sb.WriteByte(referenceAlphabet[rand.IntN(len(referenceAlphabet))]) //nolint:gosec // not security sensitive
	}
	return sb.String()
}
