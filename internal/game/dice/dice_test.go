package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

func TestCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		if v < 0 || v >= n {
			rt.Fatalf("Intn(%d) = %d out of range", n, v)
		}
	})
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestPick_CoversAllOptions(t *testing.T) {
	src := dice.NewSeededSource(7)
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		seen[dice.Pick(src, []string{"a", "b", "c"})] = true
	}
	assert.Len(t, seen, 3)
	assert.Panics(t, func() { dice.Pick(src, []int{}) })
}

func TestRoller_ChooseInRange(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	for i := 0; i < 50; i++ {
		v := r.Choose("test", 4)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 4)
	}
}

func TestRoller_IsALoggedSource(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var src dice.Source = dice.NewLoggedRoller(dice.NewSeededSource(5), zap.New(core))

	picked := dice.Pick(src, []string{"basic", "skill", "ultimate"})
	assert.Contains(t, []string{"basic", "skill", "ultimate"}, picked)

	entries := logs.FilterMessage("random choice").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "draw", fields["label"])
		assert.Equal(t, int64(3), fields["options"])
	}
}
