package enquiry

import (
	"github.com/smallbiznis/glamora/internal/enquiry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enquiry",
	fx.Provide(service.NewService),
)
