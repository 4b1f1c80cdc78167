package reading

import (
	"github.com/aquabill/aquabill/internal/reading/repository"
	"github.com/aquabill/aquabill/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
