// Package grade converts final attribute values into labelled tiers.
package grade

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/life-engine/pkg/attr"
)

// Tier is one row of a grade table. Judge is a message key; see Printer for
// localized output. Rank is a small ordinal (0-3) used for display emphasis.
type Tier struct {
	Min   int    `json:"min" yaml:"min"`
	Judge string `json:"judge" yaml:"judge"`
	Rank  int    `json:"rank" yaml:"rank"`
}

// Table is a list of tiers ordered by strictly increasing Min.
type Table []Tier

// Grade returns the highest tier whose Min does not exceed value, or the
// lowest tier when value is below every threshold.
func (t Table) Grade(value int) Tier {
	if len(t) == 0 {
		return Tier{}
	}
	for i := len(t) - 1; i >= 0; i-- {
		if value >= t[i].Min {
			return t[i]
		}
	}
	return t[0]
}

var (
	ErrEmptyTable   = errors.New("grade table is empty")
	ErrUnorderedMin = errors.New("grade thresholds must be strictly increasing")
)

// Validate checks that the table is non-empty and ordered.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i := 1; i < len(t); i++ {
		if t[i].Min <= t[i-1].Min {
			return fmt.Errorf("%w: %d follows %d", ErrUnorderedMin, t[i].Min, t[i-1].Min)
		}
	}
	return nil
}

// Tables holds one table per graded key.
type Tables map[attr.Key]Table

// Keys lists the graded keys in display order.
var Keys = []attr.Key{attr.CHR, attr.INT, attr.STR, attr.MNY, attr.SPR, attr.AGE, attr.SUM}

// Grade grades value against the table for key. It panics if the key has no
// table; callers only grade the fixed set in Keys.
func (ts Tables) Grade(key attr.Key, value int) Tier {
	table, ok := ts[key]
	if !ok {
		panic(fmt.Sprintf("grade: no table for %q", key))
	}
	return table.Grade(value)
}

// Merge returns a copy of ts with the tables of override replacing its own.
func (ts Tables) Merge(override Tables) Tables {
	out := make(Tables, len(ts)+len(override))
	for k, v := range ts {
		out[k] = slices.Clone(v)
	}
	for k, v := range override {
		out[k] = slices.Clone(v)
	}
	return out
}

// Validate checks every table and that each graded key is present.
func (ts Tables) Validate() error {
	for _, key := range Keys {
		table, ok := ts[key]
		if !ok {
			return fmt.Errorf("missing grade table for %s", key)
		}
		if err := table.Validate(); err != nil {
			return fmt.Errorf("grade table %s: %w", key, err)
		}
	}
	return nil
}

// Grade grades value for key against the default tables.
func Grade(key attr.Key, value int) Tier {
	return defaultTables.Grade(key, value)
}

// Default returns a copy of the built-in tables.
func Default() Tables {
	return defaultTables.Merge(nil)
}

var common = Table{
	{Min: 0, Judge: "Hell", Rank: 0},
	{Min: 1, Judge: "Torment", Rank: 0},
	{Min: 2, Judge: "Poor", Rank: 0},
	{Min: 4, Judge: "Average", Rank: 0},
	{Min: 7, Judge: "Excellent", Rank: 1},
	{Min: 9, Judge: "Rare", Rank: 2},
	{Min: 11, Judge: "Godlike", Rank: 3},
}

var defaultTables = Tables{
	attr.CHR: common,
	attr.INT: append(slices.Clone(common),
		Tier{Min: 21, Judge: "Sea of Mind", Rank: 3},
		Tier{Min: 131, Judge: "Primordial Spirit", Rank: 3},
		Tier{Min: 501, Judge: "Immortal Soul", Rank: 3},
	),
	attr.STR: append(slices.Clone(common),
		Tier{Min: 21, Judge: "Qi Condensation", Rank: 3},
		Tier{Min: 101, Judge: "Foundation", Rank: 3},
		Tier{Min: 401, Judge: "Golden Core", Rank: 3},
		Tier{Min: 1001, Judge: "Nascent Soul", Rank: 3},
		Tier{Min: 2001, Judge: "Immortal Body", Rank: 3},
	),
	attr.MNY: common,
	attr.SPR: {
		{Min: 0, Judge: "Hell", Rank: 0},
		{Min: 1, Judge: "Torment", Rank: 0},
		{Min: 2, Judge: "Unhappy", Rank: 0},
		{Min: 4, Judge: "Average", Rank: 0},
		{Min: 7, Judge: "Happy", Rank: 1},
		{Min: 9, Judge: "Blissful", Rank: 2},
		{Min: 11, Judge: "Destined", Rank: 3},
	},
	attr.AGE: {
		{Min: 0, Judge: "Stillborn", Rank: 0},
		{Min: 1, Judge: "Died Young", Rank: 0},
		{Min: 10, Judge: "Youth", Rank: 0},
		{Min: 18, Judge: "Prime", Rank: 0},
		{Min: 40, Judge: "Middle Age", Rank: 0},
		{Min: 60, Judge: "Sexagenarian", Rank: 1},
		{Min: 70, Judge: "Septuagenarian", Rank: 1},
		{Min: 80, Judge: "Octogenarian", Rank: 2},
		{Min: 90, Judge: "Longevity", Rank: 2},
		{Min: 95, Judge: "Ageless", Rank: 3},
		{Min: 100, Judge: "Cultivator", Rank: 3},
		{Min: 500, Judge: "Immortal Lifespan", Rank: 3},
	},
	attr.SUM: {
		{Min: 0, Judge: "Hell", Rank: 0},
		{Min: 41, Judge: "Torment", Rank: 0},
		{Min: 50, Judge: "Poor", Rank: 0},
		{Min: 60, Judge: "Average", Rank: 0},
		{Min: 80, Judge: "Excellent", Rank: 1},
		{Min: 100, Judge: "Rare", Rank: 2},
		{Min: 110, Judge: "Godlike", Rank: 3},
		{Min: 120, Judge: "Legendary", Rank: 3},
	},
}

// Score is the overall value graded against the SUM table:
// twice the sum of the core attributes plus half the final age, rounded down.
func Score(chr, intel, str, mny, spr, age int) int {
	return 2*(chr+intel+str+mny+spr) + floorDiv(age, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
