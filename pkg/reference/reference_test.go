package reference

import (
	"regexp"
	"testing"
	"time"
)

var (
	orderCodePattern    = regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{12}$`)
	ticketNumberPattern = regexp.MustCompile(`^[A-Z]{3,6}-\d{8}-[0-9A-F]{12}$`)
)

func TestNewOrderCodeFormat(t *testing.T) {
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	code, err := NewOrderCode(now)
	if err != nil {
		t.Fatalf("generate order code: %v", err)
	}
	if !orderCodePattern.MatchString(code) {
		t.Fatalf("unexpected order code %q", code)
	}
	if got := code[4:12]; got != "20260814" {
		t.Fatalf("expected date segment 20260814, got %q", got)
	}
}

func TestNewOrderCodeVaries(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewOrderCode(now)
		if err != nil {
			t.Fatalf("generate order code: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate order code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestNewTicketNumber(t *testing.T) {
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	num, err := NewTicketNumber("gala", now)
	if err != nil {
		t.Fatalf("generate ticket number: %v", err)
	}
	if !ticketNumberPattern.MatchString(num) {
		t.Fatalf("unexpected ticket number %q", num)
	}
	if num[:5] != "GALA-" {
		t.Fatalf("expected uppercased prefix, got %q", num)
	}
}

func TestNewTicketNumberRejectsBadPrefix(t *testing.T) {
	now := time.Now()
	for _, prefix := range []string{"", "AB", "TOOLONGX", "AB1", "A-B"} {
		if _, err := NewTicketNumber(prefix, now); err == nil {
			t.Fatalf("expected error for prefix %q", prefix)
		}
	}
}
