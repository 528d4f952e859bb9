package notification

import (
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("notification",
	fx.Provide(
		New,
		func(s *Service) orderdomain.Notifier { return s },
	),
)
