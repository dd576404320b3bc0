package fulfillment

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
)

// cartMetadataKey is the checkout session metadata key the storefront
// writes the cart snapshot under.
const cartMetadataKey = "cart"

var validate = validator.New()

// TicketSelectionItem is one ticket line from the cart snapshot.
type TicketSelectionItem struct {
	TierID         uuid.UUID `json:"tier_id" validate:"required"`
	Quantity       int       `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int       `json:"unit_price_cents" validate:"gte=0"`
}

// MerchSelectionItem is one merchandise line from the cart snapshot.
type MerchSelectionItem struct {
	SKU            string `json:"sku" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int    `json:"unit_price_cents" validate:"gte=0"`
}

// CartSelection is the cart snapshot the storefront stores on the
// checkout session so fulfillment knows what was bought.
type CartSelection struct {
	EventID uuid.UUID             `json:"event_id" validate:"required"`
	Tickets []TicketSelectionItem `json:"tickets" validate:"dive"`
	Merch   []MerchSelectionItem  `json:"merch" validate:"dive"`
}

// PurchasePayload is the decoded shape of a completed checkout session.
type PurchasePayload struct {
	SessionID       string
	PaymentIntentID string
	CustomerName    string
	CustomerEmail   string
	SubtotalCents   int
	TaxCents        int
	TotalCents      int
	Currency        string
	Selection       CartSelection
}

// RefundPayload is the decoded shape of a refunded charge.
type RefundPayload struct {
	ChargeID        string
	PaymentIntentID string
	AmountCents     int
	RefundedCents   int
	FullyRefunded   bool
}

func decodePurchase(event *stripe.Event) (*PurchasePayload, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
	}
	if session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	raw, ok := session.Metadata[cartMetadataKey]
	if !ok || raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart metadata missing from checkout session")
	}
	var selection CartSelection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode cart metadata")
	}
	if err := validate.Struct(selection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validate cart metadata")
	}
	if len(selection.Tickets) == 0 && len(selection.Merch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart metadata has no line items")
	}

	payload := &PurchasePayload{
		SessionID:     session.ID,
		SubtotalCents: int(session.AmountSubtotal),
		TotalCents:    int(session.AmountTotal),
		Currency:      string(session.Currency),
		Selection:     selection,
	}
	if session.PaymentIntent != nil {
		payload.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil {
		payload.CustomerName = session.CustomerDetails.Name
		payload.CustomerEmail = session.CustomerDetails.Email
	}
	if session.TotalDetails != nil {
		payload.TaxCents = int(session.TotalDetails.AmountTax)
	}
	return payload, nil
}

func decodeRefund(event *stripe.Event) (*RefundPayload, error) {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode charge")
	}
	if charge.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge id missing")
	}

	payload := &RefundPayload{
		ChargeID:      charge.ID,
		AmountCents:   int(charge.Amount),
		RefundedCents: int(charge.AmountRefunded),
		FullyRefunded: charge.Refunded,
	}
	if charge.PaymentIntent != nil {
		payload.PaymentIntentID = charge.PaymentIntent.ID
	}
	return payload, nil
}
