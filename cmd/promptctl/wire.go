//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
)

// BuildApp wires the components of one invocation using Google Wire.
func BuildApp(opts *RootOptions) (*App, func(), error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideRegistry,
		provideMetrics,
		provideCore,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
