package runner

import (
	"time"

	"github.com/jwebster45206/life-engine/internal/services"
)

// TestSuite is a list of lives played against a running API.
// A suite can instead reference other case files through Cases.
type TestSuite struct {
	Name   string     `json:"name"`
	Player string     `json:"player,omitempty"` // shared by every step; a unique suffix is added per run
	Steps  []TestStep `json:"steps,omitempty"`
	Cases  []string   `json:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep plays one life and checks the response.
type TestStep struct {
	Name         string               `json:"name,omitempty"`
	Lang         string               `json:"lang,omitempty"`
	Request      services.PlayRequest `json:"request"`
	Expectations Expectations         `json:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	Status         *int     `json:"status,omitempty"` // defaults to 201
	ErrorContains  string   `json:"error_contains,omitempty"`
	Lang           *string  `json:"lang,omitempty"`
	Times          *int     `json:"times,omitempty"`
	Talents        []int    `json:"talents,omitempty"` // exact ids, order independent
	MinYears       *int     `json:"min_years,omitempty"`
	MaxYears       *int     `json:"max_years,omitempty"`
	LogContains    []string `json:"log_contains,omitempty"`
	ReportContains []string `json:"report_contains,omitempty"`
	// SameAs names an earlier step whose years this step must repeat.
	SameAs string `json:"same_as,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	LifeID   string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
}
