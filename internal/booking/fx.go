package booking

import (
	"github.com/smallbiznis/glamora/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking",
	fx.Provide(service.NewService),
)
