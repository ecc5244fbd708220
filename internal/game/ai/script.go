package ai

import (
	"context"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// Hook names a policy script may define.
const (
	HookChooseAbility = "choose_ability"
	HookChooseSwitch  = "choose_switch"
)

// ScriptCaller is the interface required by ScriptPolicy to evaluate Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given script's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(ctx context.Context, script, hook string, args ...any) (lua.LValue, error)
}

// ScriptPolicy delegates decisions to a Lua script. The script receives the
// StateTable and may define:
//
//	choose_ability(state) → "basic" | "skill" | "ultimate"
//	choose_switch(state)  → 1-based roster index, or nil to stay
//
// A missing hook, a runtime error or an unusable answer defers to fallback.
type ScriptPolicy struct {
	caller   ScriptCaller
	script   string
	fallback battle.DecisionPolicy
	logger   *zap.Logger
}

// NewScriptPolicy constructs a ScriptPolicy.
//
// Precondition: caller, fallback and logger must not be nil.
func NewScriptPolicy(caller ScriptCaller, script string, fallback battle.DecisionPolicy, logger *zap.Logger) *ScriptPolicy {
	if caller == nil {
		panic("ai.NewScriptPolicy: caller must not be nil")
	}
	if fallback == nil {
		panic("ai.NewScriptPolicy: fallback must not be nil")
	}
	return &ScriptPolicy{caller: caller, script: script, fallback: fallback, logger: logger}
}

func (p *ScriptPolicy) ChooseAbility(ctx context.Context, view battle.Snapshot, self battle.Side) battle.AbilityKind {
	v, err := p.caller.CallHook(ctx, p.script, HookChooseAbility, StateTable(view, self))
	if err == nil {
		if s, ok := v.(lua.LString); ok {
			if kind, perr := battle.ParseAbilityKind(string(s)); perr == nil {
				return kind
			}
		}
	}
	if v != lua.LNil || err != nil {
		p.logger.Debug("script ability choice unusable",
			zap.String("script", p.script),
			zap.String("value", luaString(v)),
			zap.Error(err),
		)
	}
	return p.fallback.ChooseAbility(ctx, view, self)
}

func (p *ScriptPolicy) ChooseCharacterSwitch(ctx context.Context, view battle.Snapshot, self battle.Side) (int, bool) {
	v, err := p.caller.CallHook(ctx, p.script, HookChooseSwitch, StateTable(view, self))
	if err != nil {
		return p.fallback.ChooseCharacterSwitch(ctx, view, self)
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, false
	}
	idx := int(n) - 1
	roster := view.Players[self].Roster
	if idx < 0 || idx >= len(roster) || idx == view.Players[self].ActiveIndex {
		p.logger.Debug("script switch choice unusable",
			zap.String("script", p.script),
			zap.Int("index", int(n)),
		)
		return 0, false
	}
	return idx, true
}

func luaString(v lua.LValue) string {
	if v == nil {
		return ""
	}
	return v.String()
}
