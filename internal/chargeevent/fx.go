package chargeevent

import (
	"github.com/postboxhq/postbox/internal/chargeevent/repository"
	"github.com/postboxhq/postbox/internal/chargeevent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chargeevent.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
