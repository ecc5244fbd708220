// Package main runs AI-versus-AI battles offline and reports win rates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/card"
	"github.com/cory-johannsen/cardbattle/internal/game/clock"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
	"github.com/cory-johannsen/cardbattle/internal/l10n"
	"github.com/cory-johannsen/cardbattle/internal/observability"
	"github.com/cory-johannsen/cardbattle/internal/scripting"
)

type tally struct {
	mu       sync.Mutex
	outcomes map[battle.State]int
	turns    int
}

func (t *tally) add(s battle.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[s.State]++
	t.turns += s.TurnNumber
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	battles := flag.Int("battles", 100, "number of battles to run")
	parallel := flag.Int("parallel", 8, "battles run at once")
	seed := flag.Uint64("seed", 0, "dice seed; 0 uses crypto randomness")
	p1Policy := flag.String("p1-policy", ai.PolicyRandom, "policy for player one")
	p2Policy := flag.String("p2-policy", ai.PolicyRandom, "policy for player two")
	p1Deck := flag.String("p1-deck", "", "comma-separated roster for player one (default ai.deck)")
	p2Deck := flag.String("p2-deck", "", "comma-separated roster for player two (default ai.deck)")
	verbose := flag.Bool("v", false, "print every battle log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalog, err := card.LoadDirectory(cfg.Content.CardsDir)
	if err != nil {
		logger.Fatal("loading cards", zap.Error(err))
	}
	translator := l10n.New(logger)
	if err := translator.LoadDirectory(cfg.Content.LocaleDir); err != nil {
		logger.Fatal("loading locales", zap.Error(err))
	}

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)
	scripts := scripting.NewManager(roller, logger, cfg.AI.InstructionLimit)
	defer scripts.Close()
	if cfg.AI.ScriptDir != "" {
		if err := scripts.LoadDirectory(cfg.AI.ScriptDir); err != nil {
			logger.Fatal("loading ai scripts", zap.Error(err))
		}
	}
	policies := ai.NewRegistry()
	random := ai.NewRandomPolicy(roller)
	if err := policies.Register(ai.PolicyRandom, random); err != nil {
		logger.Fatal("registering policy", zap.Error(err))
	}
	if err := policies.RegisterScripts(scripts, scripts.Scripts(), random, logger); err != nil {
		logger.Fatal("registering scripts", zap.Error(err))
	}

	seat := func(name, policyName, deck string) (*battle.AIPlayer, error) {
		policy, ok := policies.PolicyFor(policyName)
		if !ok {
			return nil, fmt.Errorf("unknown policy %q; have %v", policyName, policies.Names())
		}
		names := cfg.AI.Deck
		if deck != "" {
			names = splitDeck(deck)
		}
		chars, err := battle.MaterializeRoster(catalog, names, cfg.Battle.BaseHP)
		if err != nil {
			return nil, err
		}
		p, err := battle.NewPlayer(name, chars)
		if err != nil {
			return nil, err
		}
		return battle.NewAIPlayer(p, policy), nil
	}

	results := &tally{outcomes: make(map[battle.State]int)}
	printer := translator.Printer(cfg.Content.DefaultLocale)
	var out sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for i := 0; i < *battles; i++ {
		g.Go(func() error {
			one, err := seat("p1:"+*p1Policy, *p1Policy, *p1Deck)
			if err != nil {
				return err
			}
			two, err := seat("p2:"+*p2Policy, *p2Policy, *p2Deck)
			if err != nil {
				return err
			}
			b, err := battle.New(fmt.Sprintf("sim-%d", i), one, two, battle.WithPrinter(printer))
			if err != nil {
				return err
			}
			m := battle.NewMatch(b, battle.NewTurnScheduler(clock.Real(), cfg.Battle.TurnTimeout))
			m.Start()
			select {
			case <-m.Done():
			case <-ctx.Done():
				m.Close()
				return ctx.Err()
			}
			m.Close()
			snap := m.Snapshot()
			results.add(snap)
			if *verbose {
				out.Lock()
				fmt.Fprintf(os.Stdout, "== %s (%s, %d turns)\n%s\n", snap.BattleID, snap.State, snap.TurnNumber, strings.Join(snap.Log, "\n"))
				out.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	total := 0
	for _, n := range results.outcomes {
		total += n
	}
	if total == 0 {
		fmt.Fprintln(os.Stdout, "no battles run")
		return
	}
	fmt.Fprintf(os.Stdout, "%d battles in %s (avg %.1f turns)\n", total, time.Since(start).Round(time.Millisecond), float64(results.turns)/float64(total))
	for _, state := range []battle.State{battle.StatePlayer1Won, battle.StatePlayer2Won, battle.StateForfeited} {
		n := results.outcomes[state]
		fmt.Fprintf(os.Stdout, "  %-12s %5d  %5.1f%%\n", state, n, 100*float64(n)/float64(total))
	}
}

func splitDeck(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
