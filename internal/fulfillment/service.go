package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/gatecrest/boxoffice-backend/internal/catalog"
	"github.com/gatecrest/boxoffice-backend/internal/documents"
	"github.com/gatecrest/boxoffice-backend/internal/orders"
	"github.com/gatecrest/boxoffice-backend/internal/transfers"
	"github.com/gatecrest/boxoffice-backend/pkg/db/models"
	"github.com/gatecrest/boxoffice-backend/pkg/enums"
	pkgerrors "github.com/gatecrest/boxoffice-backend/pkg/errors"
	"github.com/gatecrest/boxoffice-backend/pkg/logger"
	"github.com/gatecrest/boxoffice-backend/pkg/metrics"
)

type inventoryLedger interface {
	Debit(ctx context.Context, tierID uuid.UUID, qty int) error
	Credit(ctx context.Context, tierID uuid.UUID, qty int) error
}

// ServiceParams wires the orchestrator dependencies.
type ServiceParams struct {
	Orders                  orders.Service
	OrdersRepo              orders.Repository
	Catalog                 catalog.Repository
	Ledger                  inventoryLedger
	Transfers               transfers.Service
	Documents               documents.Generator
	Notifier                documents.Notifier
	Metrics                 *metrics.WebhookMetrics
	Logger                  *logger.Logger
	FeePercent              float64
	DefaultBundleMultiplier int
	EmbedScanPayload        bool
}

// Service turns verified gateway events into orders, inventory
// movements, documents, and fee transfers. Order creation is the only
// step that can fail the event; everything after it is best effort and
// degrades to logs.
type Service struct {
	orders     orders.Service
	ordersRepo orders.Repository
	catalog    catalog.Repository
	ledger     inventoryLedger
	transfers  transfers.Service
	documents  documents.Generator
	notifier   documents.Notifier
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger

	feePercent        float64
	defaultMultiplier int
	embedScanPayload  bool
}

// NewService builds the fulfillment orchestrator.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory ledger required")
	}
	if params.Transfers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfer service required")
	}
	return &Service{
		orders:            params.Orders,
		ordersRepo:        params.OrdersRepo,
		catalog:           params.Catalog,
		ledger:            params.Ledger,
		transfers:         params.Transfers,
		documents:         params.Documents,
		notifier:          params.Notifier,
		metrics:           params.Metrics,
		logg:              params.Logger,
		feePercent:        params.FeePercent,
		defaultMultiplier: params.DefaultBundleMultiplier,
		embedScanPayload:  params.EmbedScanPayload,
	}, nil
}

// HandleEvent dispatches one verified gateway event. Unknown kinds are
// acknowledged without side effects so new gateway event types never
// cause retry storms.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway event data required")
	}

	if s.logg != nil {
		ctx = s.logg.WithEventID(ctx, event.ID)
		ctx = s.logg.WithEventKind(ctx, string(event.Type))
	}

	var err error
	outcome := "processed"
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		err = s.handlePurchaseCompleted(ctx, event)
	case stripe.EventTypeChargeRefunded:
		err = s.handleChargeRefunded(ctx, event)
	case stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled,
		stripe.EventTypeChargeDisputeCreated,
		stripe.EventTypeChargeDisputeClosed,
		stripe.EventTypeChargeUpdated:
		// No order exists (or no action is safe) for these; the record
		// of receipt is the log line.
		outcome = "logged"
		if s.logg != nil {
			s.logg.Info(ctx, "gateway event acknowledged without fulfillment action")
		}
	default:
		outcome = "ignored"
		if s.logg != nil {
			s.logg.Info(ctx, "unhandled gateway event kind")
		}
	}

	if err != nil {
		outcome = "failed"
	}
	s.metrics.ObserveEvent(string(event.Type), outcome)
	return err
}

func (s *Service) handlePurchaseCompleted(ctx context.Context, event *stripe.Event) error {
	payload, err := decodePurchase(event)
	if err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, payload.SessionID)
	}

	existing, err := s.ordersRepo.FindBySessionID(ctx, payload.SessionID)
	if err != nil {
		return err
	}
	if existing != nil {
		if s.logg != nil {
			s.logg.Info(s.logg.WithOrderID(ctx, existing.ID.String()), "completion replayed for existing order")
		}
		s.ensureTransfer(ctx, existing)
		return nil
	}

	eventRecord, err := s.catalog.FindEvent(ctx, payload.Selection.EventID)
	if err != nil {
		return err
	}

	tiersByID := make(map[uuid.UUID]*models.TicketTier, len(payload.Selection.Tickets))
	ticketLines := make([]orders.TicketLineInput, 0, len(payload.Selection.Tickets))
	for _, line := range payload.Selection.Tickets {
		tier, tierErr := s.catalog.FindTier(ctx, line.TierID)
		if tierErr != nil {
			return tierErr
		}
		if tier.EventID != eventRecord.ID {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier does not belong to the cart's event").WithDetails(map[string]any{
				"tier_id":  tier.ID.String(),
				"event_id": eventRecord.ID.String(),
			})
		}
		tiersByID[tier.ID] = tier
		ticketLines = append(ticketLines, orders.TicketLineInput{
			Tier:           tier,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	merchLines := make([]orders.MerchLineInput, 0, len(payload.Selection.Merch))
	for _, line := range payload.Selection.Merch {
		merchLines = append(merchLines, orders.MerchLineInput{
			Name:           line.Name,
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	currency, currencyErr := enums.ParseCurrency(payload.Currency)
	if currencyErr != nil {
		currency = enums.CurrencyUSD
	}

	order, err := orders.Build(orders.BuildParams{
		SessionID:               payload.SessionID,
		PaymentIntentID:         payload.PaymentIntentID,
		CustomerName:            payload.CustomerName,
		CustomerEmail:           payload.CustomerEmail,
		SubtotalCents:           payload.SubtotalCents,
		TaxCents:                payload.TaxCents,
		FeeCents:                transfers.FeeAmountCents(payload.TotalCents, s.feePercent),
		TotalCents:              payload.TotalCents,
		Currency:                currency,
		Event:                   eventRecord,
		TicketLines:             ticketLines,
		MerchLines:              merchLines,
		DefaultBundleMultiplier: s.defaultMultiplier,
	})
	if err != nil {
		return err
	}

	created, stored, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, stored.ID.String())
	}
	if !created {
		if s.logg != nil {
			s.logg.Info(ctx, "completion lost creation race, treating as replay")
		}
		s.ensureTransfer(ctx, stored)
		return nil
	}

	s.applyInventory(ctx, stored, tiersByID, "debit")
	s.deliverDocuments(ctx, stored, eventRecord)
	s.ensureTransfer(ctx, stored)

	if s.logg != nil {
		s.logg.Info(ctx, "order fulfilled")
	}
	return nil
}

func (s *Service) handleChargeRefunded(ctx context.Context, event *stripe.Event) error {
	payload, err := decodeRefund(event)
	if err != nil {
		return err
	}
	if payload.PaymentIntentID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, "refunded charge carries no payment reference")
		}
		return nil
	}

	order, err := s.ordersRepo.FindByPaymentIntentID(ctx, payload.PaymentIntentID)
	if err != nil {
		return err
	}
	if order == nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "refund received for unknown order")
		}
		return nil
	}
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
	}

	if order.Status == enums.OrderStatusRefunded {
		if s.logg != nil {
			s.logg.Info(ctx, "refund replayed for already refunded order")
		}
		return nil
	}
	if err := s.ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusRefunded); err != nil {
		return err
	}

	if _, reverseErr := s.transfers.ReverseForRefund(ctx, transfers.ReverseInput{
		OrderID:       order.ID,
		RefundedCents: payload.RefundedCents,
		TotalCents:    order.TotalCents,
		FullRefund:    payload.FullyRefunded,
	}); reverseErr != nil && s.logg != nil {
		s.logg.Error(ctx, "fee transfer reversal failed", reverseErr)
	}

	s.applyInventory(ctx, order, nil, "credit")

	if s.logg != nil {
		s.logg.Info(ctx, "order refunded")
	}
	return nil
}

// applyInventory runs the per-line movements for an order. Lines are
// isolated: a failure on one never blocks the rest, it is logged and
// counted for manual correction. Bundle lines move stock twice, once on
// their own tier for the raw quantity and once on the fallback tier for
// the effective admissions.
func (s *Service) applyInventory(ctx context.Context, order *models.Order, tiersByID map[uuid.UUID]*models.TicketTier, op string) {
	report := &BatchReport{}

	for _, item := range order.TicketItems {
		report.Add(ItemResult{
			TierID:   item.TierID,
			TierName: item.TierName,
			Op:       op,
			Quantity: item.Quantity,
			Err:      s.move(ctx, op, item.TierID, item.Quantity),
		})

		if !item.IsBundle {
			continue
		}
		fallback, err := s.resolveFallbackTier(ctx, item.TierID, tiersByID)
		if err != nil {
			s.metrics.ObserveManualFix("fallback_tier_unresolved")
			report.Add(ItemResult{
				TierID:   item.TierID,
				TierName: item.TierName,
				Op:       op + " fallback",
				Quantity: item.EffectiveQuantity(),
				Err:      err,
			})
			continue
		}
		report.Add(ItemResult{
			TierID:   fallback.ID,
			TierName: fallback.Name,
			Op:       op + " fallback",
			Quantity: item.EffectiveQuantity(),
			Err:      s.move(ctx, op, fallback.ID, item.EffectiveQuantity()),
		})
	}

	for range report.Failed() {
		s.metrics.ObserveManualFix(op + "_failed")
	}
	report.Log(ctx, s.logg)
}

func (s *Service) move(ctx context.Context, op string, tierID uuid.UUID, qty int) error {
	if op == "credit" {
		return s.ledger.Credit(ctx, tierID, qty)
	}
	return s.ledger.Debit(ctx, tierID, qty)
}

// resolveFallbackTier finds the tier a bundle's admissions draw from.
// The tier cache covers the purchase path; refunds reload from the
// catalog.
func (s *Service) resolveFallbackTier(ctx context.Context, bundleTierID uuid.UUID, tiersByID map[uuid.UUID]*models.TicketTier) (*models.TicketTier, error) {
	bundle, ok := tiersByID[bundleTierID]
	if !ok {
		loaded, err := s.catalog.FindTier(ctx, bundleTierID)
		if err != nil {
			return nil, err
		}
		bundle = loaded
	}
	if bundle.FallbackTierName == nil || *bundle.FallbackTierName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "bundle tier declares no fallback tier")
	}
	return s.catalog.FindTierByEventAndName(ctx, bundle.EventID, *bundle.FallbackTierName)
}

// ensureTransfer creates the fee transfer when it is still missing, on
// first processing and on replays alike. Transfer problems never fail
// the event; the failed record and the log carry the followup.
func (s *Service) ensureTransfer(ctx context.Context, order *models.Order) {
	sourceCharge := ""
	if order.PaymentIntentID != nil {
		sourceCharge = *order.PaymentIntentID
	}
	if _, err := s.transfers.CreateForOrder(ctx, transfers.CreateInput{
		OrderID:      order.ID,
		OrderCode:    order.OrderCode,
		SourceCharge: sourceCharge,
		TotalCents:   order.TotalCents,
		Currency:     order.Currency,
	}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "fee transfer creation failed", err)
	}
}

// deliverDocuments renders ticket documents and hands them to the
// notifier. Both steps are best effort; when rendering fails the
// confirmation still goes out, just without attachments.
func (s *Service) deliverDocuments(ctx context.Context, order *models.Order, eventRecord *models.Event) {
	var artifacts []documents.Artifact
	if s.documents != nil {
		rendered, err := s.documents.Generate(ctx, order, eventRecord, documents.RenderOptions{
			EmbedScanPayload: s.embedScanPayload,
		})
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "ticket document generation failed, sending confirmation without attachments", err)
			}
		} else {
			artifacts = rendered
		}
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendOrderConfirmation(ctx, order, artifacts); err != nil && s.logg != nil {
		s.logg.Error(ctx, "order confirmation delivery failed", err)
	}
}
