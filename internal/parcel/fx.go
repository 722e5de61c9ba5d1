package parcel

import (
	"github.com/postboxhq/postbox/internal/parcel/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("parcel.service",
	fx.Provide(repository.NewRepository),
)
