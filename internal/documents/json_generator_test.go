package documents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
)

func TestJSONGenerator_Generate(t *testing.T) {
	t.Parallel()

	gen := NewJSONGenerator(nil)
	fixed := time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	intent := "pi_test_9"
	order := &models.Order{
		ID:              uuid.New(),
		OrderCode:       "ORD-20260704-AAAABBBBCCCC",
		PaymentIntentID: &intent,
		TicketItems: []models.OrderTicketItem{
			{
				Instances: []models.TicketInstance{
					{TicketNumber: "RVF-20260704-111111111111"},
					{TicketNumber: "RVF-20260704-222222222222"},
				},
			},
		},
	}

	artifacts, err := gen.Generate(context.Background(), order, nil, RenderOptions{EmbedScanPayload: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected one artifact per instance, got %d", len(artifacts))
	}

	var payload ScanPayload
	if err := json.Unmarshal(artifacts[0].Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TicketNumber != "RVF-20260704-111111111111" {
		t.Fatalf("unexpected ticket number %q", payload.TicketNumber)
	}
	if payload.TransactionID != "pi_test_9" {
		t.Fatalf("payload should prefer the payment reference, got %q", payload.TransactionID)
	}
	if !payload.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected timestamp %v", payload.Timestamp)
	}
}

func TestJSONGenerator_FallsBackToOrderCode(t *testing.T) {
	t.Parallel()

	gen := NewJSONGenerator(nil)
	order := &models.Order{
		ID:        uuid.New(),
		OrderCode: "ORD-20260704-DDDDEEEEFFFF",
		TicketItems: []models.OrderTicketItem{
			{Instances: []models.TicketInstance{{TicketNumber: "RVF-20260704-333333333333"}}},
		},
	}

	artifacts, err := gen.Generate(context.Background(), order, nil, RenderOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var payload ScanPayload
	if err := json.Unmarshal(artifacts[0].Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TransactionID != order.OrderCode {
		t.Fatalf("expected order code fallback, got %q", payload.TransactionID)
	}
}
