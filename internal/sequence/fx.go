package sequence

import "go.uber.org/fx"

var Module = fx.Module("sequence.service",
	fx.Provide(NewService),
)
