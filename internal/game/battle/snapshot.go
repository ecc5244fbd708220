package battle

import (
	"time"

	"github.com/cory-johannsen/cardbattle/internal/game/card"
)

// CharacterView is a read-only copy of a character's state.
type CharacterView struct {
	Name        string
	Game        card.Game
	Element     card.Element
	HP          int
	Shield      int
	Afflictions []card.DamageType
}

// PlayerView is a read-only copy of a player's state.
type PlayerView struct {
	Name        string
	ActiveIndex int
	Roster      []CharacterView
}

// Active returns the view of the active character.
func (p PlayerView) Active() CharacterView { return p.Roster[p.ActiveIndex] }

// Snapshot is a point-in-time copy of a battle. It shares no memory with the
// battle it was taken from.
type Snapshot struct {
	BattleID   string
	Turn       Side
	TurnNumber int
	State      State
	Players    [2]PlayerView
	Log        []string
	// Deadline is the current turn's expiry; zero when no deadline is pending.
	Deadline time.Time
}

// Winner mirrors Battle.Winner.
func (s Snapshot) Winner() (Side, bool) {
	switch s.State {
	case StatePlayer1Won:
		return SideOne, true
	case StatePlayer2Won:
		return SideTwo, true
	}
	return 0, false
}

// Snapshot copies the battle's current state.
func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{
		BattleID:   b.id,
		Turn:       b.turn,
		TurnNumber: b.turnNumber,
		State:      b.state,
		Log:        b.Log(),
	}
	for i, p := range b.players {
		s.Players[i] = viewPlayer(p)
	}
	return s
}

func viewPlayer(p *Player) PlayerView {
	v := PlayerView{Name: p.name, ActiveIndex: p.active, Roster: make([]CharacterView, len(p.roster))}
	for i, c := range p.roster {
		v.Roster[i] = CharacterView{
			Name:        c.Name(),
			Game:        c.card.Game(),
			Element:     c.card.Element(),
			HP:          c.hp,
			Shield:      c.shield,
			Afflictions: c.Afflictions(),
		}
	}
	return v
}

// Result summarizes a finished battle for persistence.
type Result struct {
	BattleID  string
	Player1   string
	Player2   string
	State     State
	Winner    string
	Forfeiter string
	// Turns is the number of the turn on which the battle ended.
	Turns int
}

// Result summarizes s. Winner and Forfeiter are player names, empty when not applicable.
func (s Snapshot) Result() Result {
	r := Result{
		BattleID: s.BattleID,
		Player1:  s.Players[SideOne].Name,
		Player2:  s.Players[SideTwo].Name,
		State:    s.State,
		Turns:    s.TurnNumber,
	}
	if side, ok := s.Winner(); ok {
		r.Winner = s.Players[side].Name
	}
	if s.State == StateForfeited {
		r.Forfeiter = s.Players[s.Turn].Name
	}
	return r
}
