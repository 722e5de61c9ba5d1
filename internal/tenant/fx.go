package tenant

import (
	"github.com/postboxhq/postbox/internal/tenant/repository"
	"github.com/postboxhq/postbox/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
