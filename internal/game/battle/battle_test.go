package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

func TestBattle_New(t *testing.T) {
	b, _, _ := duel(t)
	assert.Equal(t, battle.StateActive, b.State())
	assert.Equal(t, battle.SideOne, b.Turn())
	assert.Equal(t, 1, b.TurnNumber())
	assert.Empty(t, b.Log())

	p := newPlayer(t, "solo", battle.NewCharacter(hydro("Furina")))
	_, err := battle.New("x", p, p)
	assert.Error(t, err)
	_, err = battle.New("x", nil, p)
	assert.Error(t, err)
}

func TestBattle_TwoUltimatesReduceHPTenSixTwo(t *testing.T) {
	b, _, lycaon := duel(t)

	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilityUltimate)))
	assert.Equal(t, 6, lycaon.HP())
	require.NoError(t, b.Apply(battle.SideTwo, battle.AbilityAction(battle.AbilityBasic)))
	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilityUltimate)))
	assert.Equal(t, 2, lycaon.HP())
	assert.Equal(t, battle.StateActive, b.State())
	assert.Equal(t, 4, b.TurnNumber())
	assert.Equal(t, "Furina uses Furina Ultimate on Lycaon!", b.Log()[0])
}

func TestBattle_KnockoutEndsBattle(t *testing.T) {
	b, _, lycaon := duel(t, battle.WithHP(4))

	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilityUltimate)))
	assert.Equal(t, 0, lycaon.HP())
	assert.Equal(t, battle.StatePlayer1Won, b.State())
	winner, ok := b.Winner()
	require.True(t, ok)
	assert.Equal(t, battle.SideOne, winner)
	assert.Equal(t, []string{
		"Furina uses Furina Ultimate on Lycaon!",
		"Lycaon has been defeated!",
		"🏆 Furina's team wins!",
	}, b.Log())

	// Turn ownership is frozen once terminal.
	assert.Equal(t, battle.SideOne, b.Turn())
	assert.ErrorIs(t, b.Apply(battle.SideTwo, battle.AbilityAction(battle.AbilityBasic)), battle.ErrBattleOver)
	assert.ErrorIs(t, b.Forfeit(battle.SideTwo), battle.ErrBattleOver)
}

func TestBattle_VictoryNamesWinningActiveCharacter(t *testing.T) {
	alice := newPlayer(t, "alice", battle.NewCharacter(hydro("Furina")), battle.NewCharacter(ice("Ellen")))
	bob := newPlayer(t, "bob", battle.NewCharacter(ice("Lycaon"), battle.WithHP(1)))
	b := newBattle(t, alice, bob)

	require.NoError(t, b.Apply(battle.SideOne, battle.SwitchAction(1)))
	require.NoError(t, b.Apply(battle.SideTwo, battle.AbilityAction(battle.AbilityBasic)))
	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilityBasic)))

	assert.Equal(t, battle.StatePlayer1Won, b.State())
	log := b.Log()
	assert.Equal(t, "🏆 Ellen's team wins!", log[len(log)-1])
}

func TestBattle_NotYourTurn(t *testing.T) {
	b, _, _ := duel(t)
	err := b.Apply(battle.SideTwo, battle.AbilityAction(battle.AbilityBasic))
	assert.ErrorIs(t, err, battle.ErrNotYourTurn)
	assert.Equal(t, battle.SideOne, b.Turn())
}

func TestBattle_UnknownAbilityKindLeavesTurn(t *testing.T) {
	b, _, lycaon := duel(t)
	err := b.Apply(battle.SideOne, battle.AbilityAction("dance"))
	assert.ErrorIs(t, err, battle.ErrUnknownAbilityKind)
	assert.Equal(t, battle.SideOne, b.Turn())
	assert.Equal(t, 10, lycaon.HP())

	assert.ErrorIs(t, b.Apply(battle.SideOne, battle.Action{}), battle.ErrUnknownAction)
}

func TestBattle_SwitchConsumesTurn(t *testing.T) {
	alice := newPlayer(t, "alice", battle.NewCharacter(hydro("Furina")), battle.NewCharacter(ice("Ellen")))
	bob := newPlayer(t, "bob", battle.NewCharacter(ice("Lycaon")))
	b := newBattle(t, alice, bob)

	assert.ErrorIs(t, b.Apply(battle.SideOne, battle.SwitchAction(0)), battle.ErrInvalidSwitch)
	assert.ErrorIs(t, b.Apply(battle.SideOne, battle.SwitchAction(2)), battle.ErrInvalidSwitch)
	assert.ErrorIs(t, b.Apply(battle.SideOne, battle.SwitchAction(-1)), battle.ErrInvalidSwitch)

	require.NoError(t, b.Apply(battle.SideOne, battle.SwitchAction(1)))
	assert.Equal(t, "Ellen", alice.Active().Name())
	assert.Equal(t, battle.SideTwo, b.Turn())
	assert.Equal(t, []string{"alice switches in Ellen."}, b.Log())
}

func TestBattle_KnockoutOfBenchedCharacterIsNotRequiredToWin(t *testing.T) {
	// Only the defender's active character matters: knocking it out wins even
	// with healthy characters left on the bench.
	bob := newPlayer(t, "bob",
		battle.NewCharacter(ice("Lycaon"), battle.WithHP(1)),
		battle.NewCharacter(ice("Ellen")),
	)
	b := newBattle(t, newPlayer(t, "alice", battle.NewCharacter(hydro("Furina"))), bob)

	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilityBasic)))
	assert.Equal(t, battle.StatePlayer1Won, b.State())
}

func TestBattle_Forfeit(t *testing.T) {
	b, _, _ := duel(t)
	require.NoError(t, b.Forfeit(battle.SideOne))
	assert.Equal(t, battle.StateForfeited, b.State())
	side, ok := b.Forfeiter()
	require.True(t, ok)
	assert.Equal(t, battle.SideOne, side)
	_, won := b.Winner()
	assert.False(t, won)
	assert.Equal(t, []string{"alice ran out of time and forfeits the battle."}, b.Log())
}

func TestBattle_SnapshotIsDetached(t *testing.T) {
	b, _, _ := duel(t, battle.WithShield(1))
	snap := b.Snapshot()
	require.NoError(t, b.Apply(battle.SideOne, battle.AbilityAction(battle.AbilitySkill)))

	assert.Equal(t, 1, snap.Players[1].Active().Shield)
	assert.Equal(t, 10, snap.Players[1].Active().HP)
	assert.Empty(t, snap.Log)
	assert.Equal(t, 8, b.Snapshot().Players[1].Active().HP)
}

func TestSimulate_PlaysToKnockout(t *testing.T) {
	b, _, _ := duel(t)
	log, err := battle.Simulate(b, battle.AbilityUltimate, 100)
	require.NoError(t, err)
	// Furina hits at turns 1, 3 and 5 (10 → 6 → 2 → 0).
	assert.Equal(t, battle.StatePlayer1Won, b.State())
	assert.Len(t, log, 7)
	assert.Equal(t, "🏆 Furina's team wins!", log[len(log)-1])
}

func TestProperty_TurnsStrictlyAlternate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		alice, err := battle.NewPlayer("alice", []*battle.Character{
			battle.NewCharacter(hydro("Furina"), battle.WithHP(40)),
			battle.NewCharacter(ice("Ellen"), battle.WithHP(40)),
		})
		if err != nil {
			rt.Fatal(err)
		}
		bob, err := battle.NewPlayer("bob", []*battle.Character{
			battle.NewCharacter(ice("Lycaon"), battle.WithHP(40)),
			battle.NewCharacter(hydro("Xingqiu"), battle.WithHP(40)),
		})
		if err != nil {
			rt.Fatal(err)
		}
		b, err := battle.New("prop", alice, bob)
		if err != nil {
			rt.Fatal(err)
		}

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && !b.State().Terminal(); i++ {
			side := rapid.SampledFrom([]battle.Side{battle.SideOne, battle.SideTwo}).Draw(rt, "side")
			var a battle.Action
			if rapid.Bool().Draw(rt, "switch") {
				a = battle.SwitchAction(rapid.IntRange(-1, 2).Draw(rt, "index"))
			} else {
				a = battle.AbilityAction(rapid.SampledFrom(battle.AbilityKinds).Draw(rt, "kind"))
			}

			turn, number := b.Turn(), b.TurnNumber()
			err := b.Apply(side, a)
			switch {
			case err != nil:
				if b.Turn() != turn || b.TurnNumber() != number {
					rt.Fatalf("rejected %v by %v moved the turn", a, side)
				}
			case b.State().Terminal():
				if side != turn {
					rt.Fatalf("%v won on %v's turn", side, turn)
				}
			default:
				if side != turn || b.Turn() != turn.Opponent() || b.TurnNumber() != number+1 {
					rt.Fatalf("accepted %v by %v on %v's turn did not pass the turn", a, side, turn)
				}
			}
		}
	})
}
