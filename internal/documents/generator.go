package documents

import (
	"context"
	"time"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
)

// ScanPayload is what the gate scanner reads off a ticket document. The
// transaction id ties a scanned ticket back to its order without a
// database join at the gate.
type ScanPayload struct {
	TicketNumber  string    `json:"ticketNumber"`
	TransactionID string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

// RenderOptions tunes document generation per call.
type RenderOptions struct {
	EmbedScanPayload bool
}

// Artifact is one rendered ticket document.
type Artifact struct {
	TicketNumber string
	ContentType  string
	Data         []byte
}

// Generator renders one artifact per ticket instance on the order.
// Rendering failures never block fulfillment; callers log and move on.
type Generator interface {
	Generate(ctx context.Context, order *models.Order, event *models.Event, opts RenderOptions) ([]Artifact, error)
}

// Notifier delivers the purchase confirmation with its attached
// documents. Delivery failures never block fulfillment.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, artifacts []Artifact) error
}
