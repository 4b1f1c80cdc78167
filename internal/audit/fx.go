package audit

import (
	"github.com/aquabill/aquabill/internal/audit/repository"
	"github.com/aquabill/aquabill/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
