package gameserver

import (
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// Wire field names shared by requests and responses.
const (
	fieldBattleID = "battle_id"
	fieldPlayer   = "player"
	fieldOpponent = "opponent"
	fieldLocale   = "locale"
	fieldPolicy   = "policy"
	fieldAction   = "action"
	fieldAbility  = "ability"
	fieldIndex    = "index"
	fieldCards    = "cards"
)

// Action names accepted in the "action" field.
const (
	actionAbility = "ability"
	actionSwitch  = "switch"
)

func stringField(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

func requiredString(s *structpb.Struct, key string) (string, error) {
	v := stringField(s, key)
	if v == "" {
		return "", fmt.Errorf("missing field %q", key)
	}
	return v, nil
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("field %q must be an integer", key)
	}
	return int(n.NumberValue), nil
}

func stringListField(s *structpb.Struct, key string) ([]string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("field %q must be a list", key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		str, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, str.StringValue)
	}
	return out, nil
}

// DecodeAction reads an action from a SubmitAction request.
func DecodeAction(req *structpb.Struct) (battle.Action, error) {
	switch strings.ToLower(stringField(req, fieldAction)) {
	case actionAbility:
		kind, err := battle.ParseAbilityKind(stringField(req, fieldAbility))
		if err != nil {
			return battle.Action{}, err
		}
		return battle.AbilityAction(kind), nil
	case actionSwitch:
		idx, err := intField(req, fieldIndex)
		if err != nil {
			return battle.Action{}, err
		}
		return battle.SwitchAction(idx), nil
	case "":
		return battle.Action{}, fmt.Errorf("missing field %q", fieldAction)
	default:
		return battle.Action{}, fmt.Errorf("%w: %q", battle.ErrUnknownAction, stringField(req, fieldAction))
	}
}

// EncodeSnapshot converts a snapshot to its wire form.
func EncodeSnapshot(s battle.Snapshot) (*structpb.Struct, error) {
	players := make([]any, 0, len(s.Players))
	for _, p := range s.Players {
		roster := make([]any, 0, len(p.Roster))
		for _, c := range p.Roster {
			afflictions := make([]any, 0, len(c.Afflictions))
			for _, a := range c.Afflictions {
				afflictions = append(afflictions, string(a))
			}
			roster = append(roster, map[string]any{
				"name":        c.Name,
				"game":        string(c.Game),
				"element":     string(c.Element),
				"hp":          c.HP,
				"shield":      c.Shield,
				"afflictions": afflictions,
			})
		}
		players = append(players, map[string]any{
			"name":         p.Name,
			"active_index": p.ActiveIndex,
			"roster":       roster,
		})
	}
	log := make([]any, 0, len(s.Log))
	for _, line := range s.Log {
		log = append(log, line)
	}
	m := map[string]any{
		fieldBattleID: s.BattleID,
		"turn":        s.Turn.String(),
		"turn_number": s.TurnNumber,
		"state":       s.State.String(),
		"players":     players,
		"log":         log,
	}
	if !s.Deadline.IsZero() {
		m["deadline"] = s.Deadline.UTC().Format(time.RFC3339Nano)
	}
	res := s.Result()
	if res.Winner != "" {
		m["winner"] = res.Winner
	}
	if res.Forfeiter != "" {
		m["forfeiter"] = res.Forfeiter
	}
	return structpb.NewStruct(m)
}
