package analytics

import (
	"fmt"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// ActionKey groups actions by type and target. An empty Target means the
// action had none.
type ActionKey struct {
	Type   string `json:"type" yaml:"type"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

func actionKeyOf(a models.Action) ActionKey {
	return ActionKey{Type: a.Type, Target: a.Target}
}

// String renders the key for display, e.g. "strike:opponent" or "draw".
func (k ActionKey) String() string {
	if k.Target == "" {
		return k.Type
	}
	return k.Type + ":" + k.Target
}

func (k ActionKey) less(o ActionKey) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	return k.Target < o.Target
}

// PatternKey identifies an action taken on a specific turn (1-based).
type PatternKey struct {
	Turn   int
	Action ActionKey
}

func (k PatternKey) String() string {
	return fmt.Sprintf("turn %d %s", k.Turn, k.Action)
}

func (k PatternKey) less(o PatternKey) bool {
	if k.Turn != o.Turn {
		return k.Turn < o.Turn
	}
	return k.Action.less(o.Action)
}

// cardPair is an unordered pair of distinct cards, stored with A < B.
type cardPair struct {
	A, B string
}

func newCardPair(x, y string) cardPair {
	if y < x {
		x, y = y, x
	}
	return cardPair{A: x, B: y}
}
