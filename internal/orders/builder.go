package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	"github.com/gatecrest/boxoffice-backend/pkg/enums"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
	"github.com/gatecrest/boxoffice-backend/pkg/reference"
)

// TicketLineInput pairs a resolved tier with the purchased quantity. The
// unit price is the price actually charged; zero falls back to the
// tier's list price.
type TicketLineInput struct {
	Tier           *models.TicketTier
	Quantity       int
	UnitPriceCents int
}

// MerchLineInput describes a merchandise line from the checkout payload.
type MerchLineInput struct {
	Name           string
	SKU            string
	Quantity       int
	UnitPriceCents int
}

// BuildParams carries everything needed to assemble an order aggregate
// from a completed checkout session.
type BuildParams struct {
	SessionID               string
	PaymentIntentID         string
	CustomerName            string
	CustomerEmail           string
	SubtotalCents           int
	TaxCents                int
	FeeCents                int
	TotalCents              int
	Currency                enums.Currency
	Event                   *models.Event
	TicketLines             []TicketLineInput
	MerchLines              []MerchLineInput
	DefaultBundleMultiplier int
	Now                     time.Time
}

// Build assembles the full order aggregate in memory: order row, ticket
// lines, one numbered ticket instance per effective admission, and merch
// lines. Nothing is persisted; callers hand the result to the repository
// inside a transaction.
func Build(params BuildParams) (*models.Order, error) {
	if params.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}
	if params.Event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}
	if len(params.TicketLines) == 0 && len(params.MerchLines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	if params.TotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total cannot be negative")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	code, err := reference.NewOrderCode(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order code")
	}

	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}

	order := &models.Order{
		ID:                uuid.New(),
		CheckoutSessionID: params.SessionID,
		OrderCode:         code,
		Status:            enums.OrderStatusConfirmed,
		CustomerName:      params.CustomerName,
		CustomerEmail:     params.CustomerEmail,
		SubtotalCents:     params.SubtotalCents,
		TaxCents:          params.TaxCents,
		FeeCents:          params.FeeCents,
		TotalCents:        params.TotalCents,
		Currency:          currency,
	}
	if params.PaymentIntentID != "" {
		intent := params.PaymentIntentID
		order.PaymentIntentID = &intent
	}

	for _, line := range params.TicketLines {
		item, err := buildTicketItem(order.ID, line, params.Event.TicketPrefix, params.DefaultBundleMultiplier, now)
		if err != nil {
			return nil, err
		}
		order.TicketItems = append(order.TicketItems, *item)
	}

	for _, line := range params.MerchLines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "merch quantity must be positive")
		}
		order.MerchItems = append(order.MerchItems, models.OrderMerchItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Name:           line.Name,
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	return order, nil
}

func buildTicketItem(orderID uuid.UUID, line TicketLineInput, ticketPrefix string, defaultMultiplier int, now time.Time) (*models.OrderTicketItem, error) {
	if line.Tier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket line missing tier")
	}
	if line.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket quantity must be positive")
	}

	unitPrice := line.UnitPriceCents
	if unitPrice <= 0 {
		unitPrice = line.Tier.PriceCents
	}

	item := &models.OrderTicketItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		TierID:           line.Tier.ID,
		TierName:         line.Tier.Name,
		Quantity:         line.Quantity,
		UnitPriceCents:   unitPrice,
		IsBundle:         line.Tier.Kind == enums.TierKindBundle,
		BundleMultiplier: line.Tier.Multiplier(defaultMultiplier),
	}

	for i := 0; i < item.EffectiveQuantity(); i++ {
		number, err := reference.NewTicketNumber(ticketPrefix, now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ticket number")
		}
		item.Instances = append(item.Instances, models.TicketInstance{
			ID:                uuid.New(),
			OrderTicketItemID: item.ID,
			TicketNumber:      number,
		})
	}

	return item, nil
}
