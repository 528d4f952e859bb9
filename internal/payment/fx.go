package payment

import (
	"github.com/brisbanesurgical/storefront/internal/config"
	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
	"github.com/brisbanesurgical/storefront/internal/payment/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(NewAdapter),
	fx.Provide(NewClient),
)

func NewAdapter(cfg config.Config) (paymentdomain.Adapter, error) {
	return stripe.NewAdapter(cfg.Stripe.WebhookSecret)
}

func NewClient(cfg config.Config) *stripe.Client {
	return stripe.NewClient(cfg.Stripe.SecretKey)
}
