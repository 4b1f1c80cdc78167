package connection

import (
	"github.com/aquabill/aquabill/internal/connection/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("connection",
	fx.Provide(repository.Provide),
)
