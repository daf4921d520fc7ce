package models

import "time"

// Card represents a single card definition.
type Card struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Player represents a player whose matches are recorded.
type Player struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Deck represents a deck list.
// Cards is treated as a set: duplicates and ordering carry no meaning.
type Deck struct {
	ID      string   `json:"id" yaml:"id"`
	OwnerID string   `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Cards   []string `json:"cards" yaml:"cards"`
}

// HasCard reports whether the deck contains the given card.
func (d *Deck) HasCard(cardID string) bool {
	for _, c := range d.Cards {
		if c == cardID {
			return true
		}
	}
	return false
}

// Side identifies one of the two participants of a match.
type Side string

const (
	SideA Side = "sideA"
	SideB Side = "sideB"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Result is the outcome of a match.
type Result string

const (
	ResultSideA   Result = "sideA"
	ResultSideB   Result = "sideB"
	ResultDraw    Result = "draw"
	ResultPending Result = ""
)

// Participant is one side of a match.
type Participant struct {
	PlayerID  string `json:"player_id" yaml:"player_id"`
	DeckID    string `json:"deck_id,omitempty" yaml:"deck_id,omitempty"`
	Archetype string `json:"archetype,omitempty" yaml:"archetype,omitempty"`
}

// Action is a single recorded play.
// Target is empty when the action had no target.
type Action struct {
	Type   string `json:"type" yaml:"type"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Turn is the list of actions one side took during a turn.
type Turn struct {
	Side    Side     `json:"side" yaml:"side"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// Match represents a completed or pending match between two sides.
type Match struct {
	ID       string      `json:"id" yaml:"id"`
	SideA    Participant `json:"side_a" yaml:"side_a"`
	SideB    Participant `json:"side_b" yaml:"side_b"`
	Result   Result      `json:"result" yaml:"result"`
	Turns    []Turn      `json:"turns,omitempty" yaml:"turns,omitempty"`
	PlayedAt time.Time   `json:"played_at" yaml:"played_at"`
}

// IsPending reports whether the match has no result yet.
func (m *Match) IsPending() bool {
	return m.Result == ResultPending
}

// IsDraw reports whether the match ended in a draw.
func (m *Match) IsDraw() bool {
	return m.Result == ResultDraw
}

// Winner returns the winning side. ok is false for draws and pending matches.
func (m *Match) Winner() (side Side, ok bool) {
	switch m.Result {
	case ResultSideA:
		return SideA, true
	case ResultSideB:
		return SideB, true
	default:
		return "", false
	}
}

// Won reports whether the given side won the match.
func (m *Match) Won(side Side) bool {
	winner, ok := m.Winner()
	return ok && winner == side
}

// Participant returns the participant playing the given side.
func (m *Match) Participant(side Side) Participant {
	if side == SideB {
		return m.SideB
	}
	return m.SideA
}

// Opponent returns the participant facing the given side.
func (m *Match) Opponent(side Side) Participant {
	return m.Participant(side.Other())
}

// SideOf returns the side the player occupied in this match.
func (m *Match) SideOf(playerID string) (Side, bool) {
	switch {
	case playerID == "":
		return "", false
	case m.SideA.PlayerID == playerID:
		return SideA, true
	case m.SideB.PlayerID == playerID:
		return SideB, true
	default:
		return "", false
	}
}

// DeckSide returns the side the deck was played on.
func (m *Match) DeckSide(deckID string) (Side, bool) {
	switch {
	case deckID == "":
		return "", false
	case m.SideA.DeckID == deckID:
		return SideA, true
	case m.SideB.DeckID == deckID:
		return SideB, true
	default:
		return "", false
	}
}

// ArchetypeShare is the prevalence of one archetype in a snapshot, in percent.
type ArchetypeShare struct {
	Name       string  `json:"name" yaml:"name"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// MetaSnapshot is the metagame breakdown observed at a point in time.
type MetaSnapshot struct {
	TakenAt    time.Time        `json:"taken_at" yaml:"taken_at"`
	Archetypes []ArchetypeShare `json:"archetypes" yaml:"archetypes"`
}

// History bundles every raw record an ingestion source supplies.
type History struct {
	Cards         []Card         `json:"cards,omitempty" yaml:"cards,omitempty"`
	Players       []Player       `json:"players" yaml:"players"`
	Decks         []Deck         `json:"decks" yaml:"decks"`
	Matches       []Match        `json:"matches" yaml:"matches"`
	MetaSnapshots []MetaSnapshot `json:"meta_snapshots" yaml:"meta_snapshots"`
}

// FindPlayer returns the player with the given ID.
func (h *History) FindPlayer(id string) (Player, bool) {
	for _, p := range h.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// FindDeck returns the deck with the given ID.
func (h *History) FindDeck(id string) (Deck, bool) {
	for _, d := range h.Decks {
		if d.ID == id {
			return d, true
		}
	}
	return Deck{}, false
}
