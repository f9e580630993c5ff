package rules

import "github.com/jwebster45206/life-engine/pkg/grade"

// Tables are the decoded rule files, keyed by id as they appear on disk.
type Tables struct {
	Events  map[string]EventRecord  `json:"events" yaml:"events"`
	Talents map[string]TalentRecord `json:"talents" yaml:"talents"`
	Ages    map[string]AgeRecord    `json:"ages" yaml:"ages"`
	Grades  grade.Tables            `json:"grades,omitempty" yaml:"grades,omitempty"` // overrides the built-in tables
}

// EventRecord is one row of the event table.
type EventRecord struct {
	ID        int            `json:"id" yaml:"id"`
	Event     string         `json:"event" yaml:"event"`
	Include   string         `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude   string         `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Effect    map[string]int `json:"effect,omitempty" yaml:"effect,omitempty"`
	Once      bool           `json:"once,omitempty" yaml:"once,omitempty"`
	NoRandom  bool           `json:"NoRandom,omitempty" yaml:"NoRandom,omitempty"`
	Branch    []string       `json:"branch,omitempty" yaml:"branch,omitempty"` // "CONDITION:target"
	PostEvent string         `json:"postEvent,omitempty" yaml:"postEvent,omitempty"`
}

// TalentRecord is one row of the talent table.
type TalentRecord struct {
	ID          int            `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Grade       int            `json:"grade" yaml:"grade"`
	Condition   string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Effect      map[string]int `json:"effect,omitempty" yaml:"effect,omitempty"`
	Exclusive   []int          `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
	Status      int            `json:"status,omitempty" yaml:"status,omitempty"`
}

// AgeRecord lists the event entries available at one age, written as
// "10001" (weight 1) or "10001*0.5".
type AgeRecord struct {
	Age   int      `json:"age" yaml:"age"`
	Event []string `json:"event" yaml:"event"`
}
