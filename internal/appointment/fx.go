package appointment

import (
	"github.com/smallbiznis/glamora/internal/appointment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("appointment",
	fx.Provide(service.NewService),
)
