package life

import (
	"strings"

	"github.com/jwebster45206/life-engine/pkg/event"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/jwebster45206/life-engine/pkg/talent"
)

// Result is the outcome of one simulated year.
type Result struct {
	Age      int                `json:"age"`
	Snapshot state.Snapshot     `json:"snapshot"`
	Talents  []talent.Trigger   `json:"talents,omitempty"`
	Events   []event.Occurrence `json:"events,omitempty"`
}

func (r Result) EventLog() []string {
	var lines []string
	for _, o := range r.Events {
		lines = append(lines, o.Lines()...)
	}
	return lines
}

func (r Result) TalentLog() []string {
	lines := make([]string, 0, len(r.Talents))
	for _, tr := range r.Talents {
		lines = append(lines, tr.Log())
	}
	return lines
}

// String renders the year as the snapshot header followed by its talent and
// event lines.
func (r Result) String() string {
	var sb strings.Builder
	sb.WriteString(r.Snapshot.String())
	for _, line := range r.TalentLog() {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	for _, line := range r.EventLog() {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}
