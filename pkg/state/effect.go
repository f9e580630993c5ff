package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/attr"
)

// Delta is one signed change to an attribute.
//
// A Delta with RandomCore set is the random-core-attribute variant: its Key
// is attr.RDM and the target is picked from attr.Core each time it is applied.
type Delta struct {
	Key        attr.Key `json:"key"`
	Amount     int      `json:"amount"`
	RandomCore bool     `json:"random_core,omitempty"`
}

// Fixed returns a delta on a specific attribute.
func Fixed(key attr.Key, amount int) Delta {
	return Delta{Key: key, Amount: amount}
}

// RandomCoreAttribute returns a delta applied to one randomly chosen core
// attribute.
func RandomCoreAttribute(amount int) Delta {
	return Delta{Key: attr.RDM, Amount: amount, RandomCore: true}
}

func (d Delta) String() string {
	return fmt.Sprintf("%s%+d", d.Key, d.Amount)
}

// Effect is an ordered list of deltas. Order matters: random-core deltas
// consume the run's random source in sequence.
type Effect []Delta

// EffectFromMap builds an effect in canonical key order. The RDM key becomes
// a random-core delta; zero amounts are dropped.
func EffectFromMap(m map[attr.Key]int) Effect {
	keys := make([]attr.Key, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b attr.Key) int {
		switch {
		case attr.Less(a, b):
			return -1
		case attr.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	effect := make(Effect, 0, len(keys))
	for _, k := range keys {
		if k == attr.RDM {
			effect = append(effect, RandomCoreAttribute(m[k]))
			continue
		}
		effect = append(effect, Fixed(k, m[k]))
	}
	return effect
}

func (e Effect) IsEmpty() bool {
	return len(e) == 0
}

func (e Effect) String() string {
	parts := make([]string, len(e))
	for i, d := range e {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}
