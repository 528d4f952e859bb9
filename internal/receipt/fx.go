package receipt

import (
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt",
	fx.Provide(
		New,
		func(s *Service) orderdomain.ReceiptGenerator { return s },
	),
)
