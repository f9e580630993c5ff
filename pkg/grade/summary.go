package grade

import (
	"strings"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/state"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Entry is the grade of one key in a summary.
type Entry struct {
	Key   attr.Key `json:"key"`
	Value int      `json:"value"`
	Tier  Tier     `json:"tier"`
}

// Summary is the final grading of a life.
type Summary struct {
	Entries []Entry `json:"entries"`
}

// Summarize grades the final snapshot of a life.
func Summarize(snap state.Snapshot, tables Tables) Summary {
	values := map[attr.Key]int{
		attr.CHR: snap.CHR,
		attr.INT: snap.INT,
		attr.STR: snap.STR,
		attr.MNY: snap.MNY,
		attr.SPR: snap.SPR,
		attr.AGE: snap.Age,
		attr.SUM: Score(snap.CHR, snap.INT, snap.STR, snap.MNY, snap.SPR, snap.Age),
	}

	entries := make([]Entry, 0, len(Keys))
	for _, key := range Keys {
		v := values[key]
		entries = append(entries, Entry{Key: key, Value: v, Tier: tables.Grade(key, v)})
	}
	return Summary{Entries: entries}
}

// Get returns the entry for key.
func (s Summary) Get(key attr.Key) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Format renders the summary with the labels of p's language.
func (s Summary) Format(p *message.Printer) string {
	var sb strings.Builder
	sb.WriteString(Label(p, titleKey))
	sb.WriteString("\n\n")
	for i, e := range s.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Format(p))
	}
	return sb.String()
}

// Format renders one line such as "Intelligence: 7 (Excellent)".
func (e Entry) Format(p *message.Printer) string {
	return p.Sprintf("%s: %d (%s)", Label(p, Name(e.Key)), e.Value, Label(p, e.Tier.Judge))
}

func (s Summary) String() string {
	return s.Format(message.NewPrinter(language.English))
}
