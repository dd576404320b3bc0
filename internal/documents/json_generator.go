package documents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
	"github.com/gatecrest/boxoffice-backend/pkg/logger"
)

// JSONGenerator emits the scan payload for each ticket as a JSON
// artifact. It is the default wiring until the PDF rendering service is
// attached; the scanner only needs the payload, not the visual layout.
type JSONGenerator struct {
	logg *logger.Logger
	now  func() time.Time
}

// NewJSONGenerator builds the default document generator.
func NewJSONGenerator(logg *logger.Logger) *JSONGenerator {
	return &JSONGenerator{logg: logg, now: func() time.Time { return time.Now().UTC() }}
}

func (g *JSONGenerator) Generate(ctx context.Context, order *models.Order, event *models.Event, opts RenderOptions) ([]Artifact, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	transactionID := order.OrderCode
	if order.PaymentIntentID != nil && *order.PaymentIntentID != "" {
		transactionID = *order.PaymentIntentID
	}

	var artifacts []Artifact
	for _, item := range order.TicketItems {
		for _, instance := range item.Instances {
			payload := ScanPayload{
				TicketNumber:  instance.TicketNumber,
				TransactionID: transactionID,
				Timestamp:     g.now(),
			}
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode scan payload")
			}
			artifacts = append(artifacts, Artifact{
				TicketNumber: instance.TicketNumber,
				ContentType:  "application/json",
				Data:         data,
			})
		}
	}

	if g.logg != nil {
		g.logg.Info(g.logg.WithOrderID(ctx, order.ID.String()), "ticket documents generated")
	}
	return artifacts, nil
}

// LogNotifier records confirmations instead of delivering them. It
// stands in until the mail provider integration lands.
type LogNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier builds the default notifier.
func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order, artifacts []Artifact) error {
	if n.logg == nil || order == nil {
		return nil
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"customer_email": order.CustomerEmail,
		"artifacts":      len(artifacts),
	})
	n.logg.Info(ctx, "order confirmation queued")
	return nil
}
