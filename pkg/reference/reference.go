// Package reference generates the human-facing identifiers stamped on
// orders and tickets.
package reference

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	orderCodePrefix = "ORD"
	randomHexLen    = 12

	minTicketPrefixLen = 3
	maxTicketPrefixLen = 6
)

// NewOrderCode returns an order code of the form ORD-YYYYMMDD-XXXXXXXXXXXX
// where X is uppercase hex. Uniqueness is enforced by the orders table;
// the 48 random bits here only make collisions implausible, not impossible.
func NewOrderCode(now time.Time) (string, error) {
	suffix, err := randomHex()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", orderCodePrefix, now.Format("20060102"), suffix), nil
}

// NewTicketNumber returns a ticket number of the form
// PREFIX-YYYYMMDD-XXXXXXXXXXXX. The prefix comes from the event definition
// and must be 3-6 letters; it is uppercased in the output.
func NewTicketNumber(prefix string, now time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if err := validateTicketPrefix(prefix); err != nil {
		return "", err
	}
	suffix, err := randomHex()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix), nil
}

func validateTicketPrefix(prefix string) error {
	if len(prefix) < minTicketPrefixLen || len(prefix) > maxTicketPrefixLen {
		return fmt.Errorf("ticket prefix must be %d-%d letters, got %q", minTicketPrefixLen, maxTicketPrefixLen, prefix)
	}
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("ticket prefix must contain only letters, got %q", prefix)
		}
	}
	return nil
}

func randomHex() (string, error) {
	buf := make([]byte, randomHexLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return strings.ToUpper(fmt.Sprintf("%x", buf)), nil
}
