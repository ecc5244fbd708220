//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/config"
)

var providerSet = wire.NewSet(
	provideCatalog,
	provideCardLookup,
	provideTranslator,
	provideDiceSource,
	provideRoller,
	provideScripts,
	providePolicies,
	provideStores,
	provideRosterStore,
	provideResultRecorder,
	provideHandler,
	provideGRPCServer,
	provideLifecycle,
	wire.Struct(new(App), "*"),
)

// initializeApp assembles the server from cfg.
func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
