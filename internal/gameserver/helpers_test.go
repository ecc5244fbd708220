package gameserver_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/card"
	"github.com/cory-johannsen/cardbattle/internal/game/clock"
	"github.com/cory-johannsen/cardbattle/internal/gameserver"
	"github.com/cory-johannsen/cardbattle/internal/l10n"
	"github.com/cory-johannsen/cardbattle/internal/roster"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type ultimatePolicy struct{}

func (ultimatePolicy) ChooseAbility(context.Context, battle.Snapshot, battle.Side) battle.AbilityKind {
	return battle.AbilityUltimate
}

func (ultimatePolicy) ChooseCharacterSwitch(context.Context, battle.Snapshot, battle.Side) (int, bool) {
	return 0, false
}

type recorder struct {
	mu      sync.Mutex
	results []battle.Result
}

func (r *recorder) RecordResult(_ context.Context, res battle.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *recorder) all() []battle.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]battle.Result(nil), r.results...)
}

type fixture struct {
	handler *gameserver.BattleHandler
	rosters *roster.MemoryStore
	catalog *card.Catalog
	clock   *clock.Fake
	results *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := card.NewCatalog(
		card.MustNew(card.Spec{Name: "Furina", Game: card.GameGenshin, Element: card.ElementHydro}),
		card.MustNew(card.Spec{Name: "Freminet", Game: card.GameGenshin, Element: card.ElementCryo}),
		card.MustNew(card.Spec{Name: "Lycaon", Game: card.GameZZZ, Element: card.ElementIce}),
	)
	require.NoError(t, err)

	policies := ai.NewRegistry()
	require.NoError(t, policies.Register("ultimate", ultimatePolicy{}))

	f := &fixture{
		rosters: roster.NewMemoryStore(),
		catalog: catalog,
		clock:   clock.NewFake(epoch),
		results: &recorder{},
	}
	f.handler = gameserver.NewBattleHandler(
		battle.NewEngine(),
		catalog,
		f.rosters,
		policies,
		l10n.New(zap.NewNop()),
		f.clock,
		f.results,
		gameserver.BattleHandlerConfig{
			TurnTimeout:   30 * time.Second,
			BaseHP:        battle.DefaultHP,
			RosterSize:    1,
			AIName:        "Bot",
			AIDeck:        []string{"Lycaon"},
			AIPolicy:      "ultimate",
			DefaultLocale: "en_US",
		},
		zap.NewNop(),
	)
	t.Cleanup(f.handler.Close)

	ctx := context.Background()
	require.NoError(t, f.rosters.SetRoster(ctx, "alice", []string{"Furina"}))
	require.NoError(t, f.rosters.SetRoster(ctx, "bob", []string{"Lycaon"}))
	return f
}

func (f *fixture) pvp(t *testing.T) battle.Snapshot {
	t.Helper()
	snap, err := f.handler.StartBattle(context.Background(), gameserver.StartRequest{Challenger: "alice", Opponent: "bob"})
	require.NoError(t, err)
	return snap
}
