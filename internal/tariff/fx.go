package tariff

import (
	"github.com/aquabill/aquabill/internal/tariff/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff",
	fx.Provide(repository.Provide),
)
