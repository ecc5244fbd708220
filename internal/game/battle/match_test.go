package battle_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/clock"
)

const turnTimeout = 30 * time.Second

func startMatch(t *testing.T, b *battle.Battle, opts ...battle.MatchOption) (*battle.Match, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(epoch)
	m := battle.NewMatch(b, battle.NewTurnScheduler(clk, turnTimeout), opts...)
	m.Start()
	t.Cleanup(m.Close)
	return m, clk
}

func countForfeits(log []string) int {
	n := 0
	for _, line := range log {
		if strings.Contains(line, "forfeits") {
			n++
		}
	}
	return n
}

func TestMatch_SubmitBeforeStart(t *testing.T) {
	b, _, _ := duel(t)
	m := battle.NewMatch(b, battle.NewTurnScheduler(clock.NewFake(epoch), turnTimeout))
	_, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	assert.ErrorIs(t, err, battle.ErrNotStarted)
}

func TestMatch_ActionBeforeDeadlineAvoidsForfeit(t *testing.T) {
	b, _, _ := duel(t)
	m, clk := startMatch(t, b)

	clk.Advance(29 * time.Second)
	snap, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	require.NoError(t, err)
	assert.Equal(t, battle.SideTwo, snap.Turn)
	assert.Equal(t, epoch.Add(59*time.Second), snap.Deadline)

	clk.Advance(time.Second)
	assert.Equal(t, battle.StateActive, m.Snapshot().State)

	// bob's own deadline still applies.
	clk.Advance(29 * time.Second)
	final := m.Snapshot()
	assert.Equal(t, battle.StateForfeited, final.State)
	assert.Equal(t, 1, countForfeits(final.Log))
	assert.Contains(t, final.Log, "bob ran out of time and forfeits the battle.")
}

func TestMatch_NoActionForfeitsExactlyOnce(t *testing.T) {
	b, _, _ := duel(t)
	m, clk := startMatch(t, b)

	clk.Advance(turnTimeout)
	select {
	case <-m.Done():
	default:
		t.Fatal("match should be done after the deadline")
	}
	side, ok := b.Forfeiter()
	require.True(t, ok)
	assert.Equal(t, battle.SideOne, side)

	clk.Advance(time.Hour)
	snap, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	assert.ErrorIs(t, err, battle.ErrBattleOver)
	assert.Equal(t, 1, countForfeits(snap.Log))
	assert.Equal(t, 0, clk.Pending())
}

func TestMatch_RejectedActionKeepsDeadline(t *testing.T) {
	b, _, _ := duel(t)
	m, clk := startMatch(t, b)

	clk.Advance(10 * time.Second)
	snap, err := m.Submit(battle.SideOne, battle.SwitchAction(0))
	assert.ErrorIs(t, err, battle.ErrInvalidSwitch)
	assert.Equal(t, battle.SideOne, snap.Turn)
	assert.Equal(t, epoch.Add(turnTimeout), snap.Deadline)

	_, err = m.Submit(battle.SideTwo, battle.AbilityAction(battle.AbilityBasic))
	assert.ErrorIs(t, err, battle.ErrNotYourTurn)

	clk.Advance(20 * time.Second)
	assert.Equal(t, battle.StateForfeited, m.Snapshot().State)
}

func TestMatch_KnockoutCancelsDeadline(t *testing.T) {
	b, _, _ := duel(t, battle.WithHP(1))
	var ended []battle.Snapshot
	m, clk := startMatch(t, b, battle.WithOnEnd(func(s battle.Snapshot) { ended = append(ended, s) }))

	_, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	require.NoError(t, err)
	assert.Equal(t, 0, clk.Pending())
	clk.Advance(time.Hour)

	require.Len(t, ended, 1)
	assert.Equal(t, battle.StatePlayer1Won, ended[0].State)
	assert.Equal(t, 0, countForfeits(m.Snapshot().Log))
}

func TestMatch_BroadcastsEveryChange(t *testing.T) {
	b, _, _ := duel(t)
	var mu sync.Mutex
	var turns []battle.Side
	m, _ := startMatch(t, b, battle.WithBroadcast(func(s battle.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		turns = append(turns, s.Turn)
	}))
	_, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []battle.Side{battle.SideOne, battle.SideTwo}, turns)
}

func TestMatch_AIPlaysItsTurn(t *testing.T) {
	alice := newPlayer(t, "alice", battle.NewCharacter(hydro("Furina")))
	bot := battle.NewAIPlayer(
		newPlayer(t, "bot", battle.NewCharacter(ice("Lycaon"))),
		fixedPolicy{kind: battle.AbilitySkill},
	)
	m, _ := startMatch(t, newBattle(t, alice, bot))

	_, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return m.Snapshot().Turn == battle.SideOne
	}, time.Second, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, 7, snap.Players[0].Active().HP)
	assert.Equal(t, "Lycaon uses Lycaon Skill on Furina!", snap.Log[1])
}

func TestMatch_AIRejectedChoiceFallsBackToBasic(t *testing.T) {
	bot := battle.NewAIPlayer(
		newPlayer(t, "bot", battle.NewCharacter(ice("Lycaon"))),
		fixedPolicy{switchTo: 0, doSwitch: true},
	)
	alice := newPlayer(t, "alice", battle.NewCharacter(hydro("Furina")))
	m, _ := startMatch(t, newBattle(t, bot, alice))

	require.Eventually(t, func() bool {
		return m.Snapshot().Turn == battle.SideTwo
	}, time.Second, time.Millisecond)
	assert.Equal(t, 9, m.Snapshot().Players[1].Active().HP)
}

func TestMatch_AIVersusAIRunsToCompletion(t *testing.T) {
	one := battle.NewAIPlayer(newPlayer(t, "one", battle.NewCharacter(hydro("Furina"))), fixedPolicy{kind: battle.AbilityUltimate})
	two := battle.NewAIPlayer(newPlayer(t, "two", battle.NewCharacter(ice("Lycaon"))), fixedPolicy{kind: battle.AbilityBasic})
	m, _ := startMatch(t, newBattle(t, one, two))

	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("AI match did not finish")
	}
	assert.Equal(t, battle.StatePlayer1Won, m.Snapshot().State)
}

func TestMatch_CloseStopsDeadlines(t *testing.T) {
	b, _, _ := duel(t)
	m, clk := startMatch(t, b)
	m.Close()
	assert.Equal(t, 0, clk.Pending())
	clk.Advance(time.Hour)
	assert.Equal(t, battle.StateActive, b.State())
	_, err := m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
	assert.ErrorIs(t, err, battle.ErrBattleOver)
}

func TestProperty_ActionRacingExpiryHasOneOutcome(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		furina := battle.NewCharacter(hydro("Furina"))
		lycaon := battle.NewCharacter(ice("Lycaon"))
		alice, _ := battle.NewPlayer("alice", []*battle.Character{furina})
		bob, _ := battle.NewPlayer("bob", []*battle.Character{lycaon})
		b, err := battle.New("race", alice, bob)
		if err != nil {
			rt.Fatal(err)
		}
		clk := clock.NewFake(epoch)
		m := battle.NewMatch(b, battle.NewTurnScheduler(clk, turnTimeout))
		m.Start()
		defer m.Close()

		lead := time.Duration(rapid.Int64Range(int64(29*time.Second), int64(turnTimeout)).Draw(rt, "lead"))
		clk.Advance(lead - time.Millisecond)

		var wg sync.WaitGroup
		var submitErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			clk.Advance(time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			_, submitErr = m.Submit(battle.SideOne, battle.AbilityAction(battle.AbilityBasic))
		}()
		wg.Wait()

		snap := m.Snapshot()
		forfeits := countForfeits(snap.Log)
		applied := lycaon.HP() == 9
		switch {
		case submitErr == nil:
			if !applied || forfeits != 0 || snap.State != battle.StateActive {
				rt.Fatalf("accepted action but state=%v forfeits=%d hp=%d", snap.State, forfeits, lycaon.HP())
			}
		default:
			if applied || forfeits != 1 || snap.State != battle.StateForfeited {
				rt.Fatalf("rejected action (%v) but state=%v forfeits=%d hp=%d", submitErr, snap.State, forfeits, lycaon.HP())
			}
		}
	})
}
