package providers

import (
	"github.com/brisbanesurgical/storefront/internal/providers/email"
	"github.com/brisbanesurgical/storefront/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
