package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/card"
	"github.com/cory-johannsen/cardbattle/internal/game/clock"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
	"github.com/cory-johannsen/cardbattle/internal/gameserver"
	"github.com/cory-johannsen/cardbattle/internal/l10n"
	"github.com/cory-johannsen/cardbattle/internal/roster"
	"github.com/cory-johannsen/cardbattle/internal/scripting"
	"github.com/cory-johannsen/cardbattle/internal/server"
	"github.com/cory-johannsen/cardbattle/internal/storage/postgres"
)

// App is the assembled battle server.
type App struct {
	Lifecycle *server.Lifecycle
	Handler   *gameserver.BattleHandler
}

func provideCatalog(cfg config.Config, logger *zap.Logger) (*card.Catalog, error) {
	start := time.Now()
	catalog, err := card.LoadDirectory(cfg.Content.CardsDir)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	logger.Info("cards loaded", zap.Int("count", catalog.Len()), zap.Duration("elapsed", time.Since(start)))
	return catalog, nil
}

func provideCardLookup(c *card.Catalog) battle.CardLookup { return c }

func provideTranslator(cfg config.Config, logger *zap.Logger) (*l10n.Translator, error) {
	t := l10n.New(logger)
	if err := t.LoadDirectory(cfg.Content.LocaleDir); err != nil {
		return nil, err
	}
	logger.Info("locales loaded", zap.Int("count", len(t.Languages())))
	return t, nil
}

func provideDiceSource() dice.Source { return dice.NewCryptoSource() }

func provideRoller(src dice.Source, logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(src, logger)
}

func provideScripts(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, logger, cfg.AI.InstructionLimit)
	if cfg.AI.ScriptDir != "" {
		if err := mgr.LoadDirectory(cfg.AI.ScriptDir); err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	logger.Info("ai scripts loaded", zap.Strings("scripts", mgr.Scripts()))
	return mgr, mgr.Close, nil
}

func providePolicies(cfg config.Config, roller *dice.Roller, scripts *scripting.Manager, logger *zap.Logger) (*ai.Registry, error) {
	reg := ai.NewRegistry()
	random := ai.NewRandomPolicy(roller)
	if err := reg.Register(ai.PolicyRandom, random); err != nil {
		return nil, err
	}
	if err := reg.RegisterScripts(scripts, scripts.Scripts(), random, logger); err != nil {
		return nil, err
	}
	if cfg.AI.APIKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(cfg.AI.APIKey))
		llm := ai.NewLLMPolicy(&client.Messages, ai.LLMConfig{
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.RequestTimeout,
		}, random, logger.With(zap.String("policy", ai.PolicyLLM)))
		if err := reg.Register(ai.PolicyLLM, llm); err != nil {
			return nil, err
		}
	}
	if _, ok := reg.PolicyFor(cfg.AI.Policy); !ok {
		return nil, fmt.Errorf("ai.policy %q is not registered; have %v", cfg.AI.Policy, reg.Names())
	}
	return reg, nil
}

// stores bundles the persistence chosen by storage.backend.
type stores struct {
	rosters roster.Store
	// results is nil for the memory backend.
	results gameserver.ResultRecorder
	pool    *postgres.Pool
}

func provideStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, func(), error) {
	if cfg.Storage.Backend != "postgres" {
		logger.Info("using in-memory rosters")
		return stores{rosters: roster.NewMemoryStore()}, func() {}, nil
	}
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("connected to database", zap.Duration("elapsed", time.Since(start)))
	return stores{
		rosters: pool.Rosters(),
		results: pool.Results(),
		pool:    pool,
	}, pool.Close, nil
}

func provideRosterStore(s stores) roster.Store { return s.rosters }

func provideResultRecorder(s stores) gameserver.ResultRecorder { return s.results }

func provideHandler(
	cfg config.Config,
	cards battle.CardLookup,
	rosters roster.Store,
	policies *ai.Registry,
	translator *l10n.Translator,
	results gameserver.ResultRecorder,
	logger *zap.Logger,
) *gameserver.BattleHandler {
	return gameserver.NewBattleHandler(
		battle.NewEngine(),
		cards,
		rosters,
		policies,
		translator,
		clock.Real(),
		results,
		gameserver.BattleHandlerConfig{
			TurnTimeout:   cfg.Battle.TurnTimeout,
			BaseHP:        cfg.Battle.BaseHP,
			RosterSize:    cfg.Battle.RosterSize,
			AIDeck:        cfg.AI.Deck,
			AIPolicy:      cfg.AI.Policy,
			DefaultLocale: cfg.Content.DefaultLocale,
		},
		logger,
	)
}

func provideGRPCServer(cfg config.Config, handler *gameserver.BattleHandler, rosters roster.Store, cards battle.CardLookup, logger *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(logger)))
	gameserver.RegisterBattleServiceServer(srv, gameserver.NewBattleService(handler, rosters, cards, cfg.Battle.RosterSize, logger))
	hs := health.NewServer()
	hs.SetServingStatus(gameserver.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("rpc",
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return resp, err
	}
}

// shutdownGrace bounds GracefulStop; open watch streams are cut after it.
const shutdownGrace = 5 * time.Second

func provideLifecycle(cfg config.Config, srv *grpc.Server, handler *gameserver.BattleHandler, s stores, logger *zap.Logger) *server.Lifecycle {
	lifecycle := server.NewLifecycle(logger)

	if s.pool != nil {
		stop := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return nil
					case <-ticker.C:
						if err := s.pool.Health(context.Background(), 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
							continue
						}
						acquired, total := s.pool.InUse()
						logger.Debug("database healthy", zap.Int32("acquired", acquired), zap.Int32("total", total))
					}
				}
			},
			StopFn: func() { close(stop) },
		})
	}

	battlesDone := make(chan struct{})
	lifecycle.Add("battles", &server.FuncService{
		StartFn: func() error {
			<-battlesDone
			return nil
		},
		StopFn: func() {
			handler.Close()
			close(battlesDone)
		},
	})

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.Server.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		},
		StopFn: func() {
			done := make(chan struct{})
			go func() {
				srv.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(shutdownGrace):
				srv.Stop()
			}
		},
	})
	return lifecycle
}
