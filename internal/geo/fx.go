package geo

import "go.uber.org/fx"

var Module = fx.Module("geo",
	fx.Provide(NewValidator),
)
