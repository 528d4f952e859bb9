package order

import (
	"github.com/brisbanesurgical/storefront/internal/order/repository"
	"github.com/brisbanesurgical/storefront/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
