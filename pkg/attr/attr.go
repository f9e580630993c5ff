// Package attr defines the attribute keys shared by the condition compiler,
// the character state and the grading tables.
package attr

// Key is a three-letter attribute key such as "CHR" or "EVT".
type Key string

const (
	AGE Key = "AGE" // age
	CHR Key = "CHR" // appearance
	INT Key = "INT" // intelligence
	STR Key = "STR" // physique
	MNY Key = "MNY" // wealth
	SPR Key = "SPR" // happiness
	LIF Key = "LIF" // life counter
	TMS Key = "TMS" // run counter
	TLT Key = "TLT" // acquired talents
	EVT Key = "EVT" // events triggered this run
	AVT Key = "AVT" // events ever triggered
	SUM Key = "SUM" // overall score, grading only
	RDM Key = "RDM" // random core attribute, effects only
)

// AEVT is the condition alias for AVT.
const AEVT = "AEVT"

// Kind describes how a key may be used.
type Kind int

const (
	KindUnknown Kind = iota
	KindNumeric
	KindSet
	KindDerived
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindSet:
		return "set"
	case KindDerived:
		return "derived"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

var kinds = map[Key]Kind{
	AGE: KindNumeric,
	CHR: KindNumeric,
	INT: KindNumeric,
	STR: KindNumeric,
	MNY: KindNumeric,
	SPR: KindNumeric,
	LIF: KindNumeric,
	TMS: KindNumeric,
	TLT: KindSet,
	EVT: KindSet,
	AVT: KindSet,
	SUM: KindDerived,
	RDM: KindMarker,
}

// Core lists the five core attributes in their canonical order.
var Core = [5]Key{CHR, INT, STR, MNY, SPR}

// Allocatable lists the attributes that receive initial points, in order.
var Allocatable = [4]Key{CHR, INT, STR, MNY}

// Lookup resolves a key (including the AEVT alias) and reports its kind.
func Lookup(name string) (Key, Kind) {
	if name == AEVT {
		return AVT, KindSet
	}
	k := Key(name)
	kind, ok := kinds[k]
	if !ok {
		return k, KindUnknown
	}
	return k, kind
}

// KindOf returns the declared kind of k.
func KindOf(k Key) Kind {
	return kinds[k]
}

// IsCore reports whether k is one of the five core attributes.
func IsCore(k Key) bool {
	for _, c := range Core {
		if c == k {
			return true
		}
	}
	return false
}

// order is the canonical ordering used when effects are normalized.
var order = map[Key]int{
	AGE: 0, CHR: 1, INT: 2, STR: 3, MNY: 4, SPR: 5, LIF: 6, TMS: 7, RDM: 8,
}

// Less orders keys canonically; unknown keys sort last by name.
func Less(a, b Key) bool {
	oa, okA := order[a]
	ob, okB := order[b]
	switch {
	case okA && okB:
		return oa < ob
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}
