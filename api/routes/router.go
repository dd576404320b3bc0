package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatecrest/boxoffice-backend/api/controllers"
	webhookcontrollers "github.com/gatecrest/boxoffice-backend/api/controllers/webhooks"
	"github.com/gatecrest/boxoffice-backend/api/middleware"
	"github.com/gatecrest/boxoffice-backend/internal/fulfillment"
	"github.com/gatecrest/boxoffice-backend/pkg/config"
	"github.com/gatecrest/boxoffice-backend/pkg/logger"
	"github.com/gatecrest/boxoffice-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config             *config.Config
	Logger             *logger.Logger
	DBPinger           controllers.Pinger
	RedisPinger        controllers.Pinger
	StripeClient       *stripe.Client
	FulfillmentService *fulfillment.Service
	WebhookGuard       *fulfillment.IdempotencyGuard
	MetricsRegistry    *prometheus.Registry
}

// NewRouter assembles the webhook gateway's HTTP surface.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, map[string]controllers.Pinger{
			"database": p.DBPinger,
			"redis":    p.RedisPinger,
		}))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.FulfillmentService, p.StripeClient, p.WebhookGuard, p.Logger))
	})

	if p.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	return r
}
