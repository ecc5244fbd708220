package ai

import (
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// StateTable renders view from self's perspective as plain values suitable for
// scripting.ToLua. Roster indexes are 1-based to match Lua arrays.
//
//	{ turn = 3, self = {name, active, roster = {...}}, enemy = {...} }
//
// where self.active and enemy.active are the active character's table.
func StateTable(view battle.Snapshot, self battle.Side) map[string]any {
	return map[string]any{
		"battle_id": view.BattleID,
		"turn":      view.TurnNumber,
		"self":      playerTable(view.Players[self]),
		"enemy":     playerTable(view.Players[self.Opponent()]),
	}
}

func playerTable(p battle.PlayerView) map[string]any {
	roster := make([]any, len(p.Roster))
	for i, c := range p.Roster {
		roster[i] = characterTable(c)
	}
	return map[string]any{
		"name":         p.Name,
		"active_index": p.ActiveIndex + 1,
		"active":       characterTable(p.Active()),
		"roster":       roster,
	}
}

func characterTable(c battle.CharacterView) map[string]any {
	afflictions := make([]string, len(c.Afflictions))
	for i, a := range c.Afflictions {
		afflictions[i] = string(a)
	}
	return map[string]any{
		"name":        c.Name,
		"game":        string(c.Game),
		"element":     string(c.Element),
		"hp":          c.HP,
		"shield":      c.Shield,
		"effective":   c.HP + c.Shield,
		"afflictions": afflictions,
	}
}
