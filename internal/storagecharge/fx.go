package storagecharge

import (
	"github.com/postboxhq/postbox/internal/storagecharge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("storagecharge.service",
	fx.Provide(service.NewService),
)
