package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/life-engine/internal/services"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running life-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite. Lives played by the suite are
// deleted when it finishes.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	// Fresh player per run so run counters start at zero
	player := ""
	if suite.Player != "" {
		player = suite.Player + "-" + uuid.NewString()[:8]
	}

	played := make(map[string]*services.LifeReport)
	defer func() {
		for _, report := range played {
			if err := r.deleteLife(context.Background(), report.ID); err != nil {
				r.Logger("    Warning: failed to delete life %s: %v", report.ID, err)
			}
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		if step.Request.Player == "" {
			step.Request.Player = player
		}
		stepResult, report := r.runStep(ctx, step, played)
		result.Results = append(result.Results, stepResult)
		if report != nil {
			played[step.Name] = report
		}

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep plays one life and checks the step's expectations
func (r *Runner) runStep(ctx context.Context, step TestStep, played map[string]*services.LifeReport) (TestResult, *services.LifeReport) {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	status, body, err := r.postLife(ctx, step.Request, step.Lang)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, nil
	}

	want := http.StatusCreated
	if step.Expectations.Status != nil {
		want = *step.Expectations.Status
	}
	if status != want {
		result.Error = fmt.Errorf("expected status %d, got %d: %s", want, status, string(body))
		result.Duration = time.Since(start)
		return result, nil
	}

	if status != http.StatusCreated {
		if exp := step.Expectations.ErrorContains; exp != "" && !strings.Contains(string(body), exp) {
			result.Error = fmt.Errorf("expected error to contain '%s', got %s", exp, string(body))
		} else {
			result.Success = true
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	var report services.LifeReport
	if err := json.Unmarshal(body, &report); err != nil {
		result.Error = fmt.Errorf("failed to decode life: %w", err)
		result.Duration = time.Since(start)
		return result, nil
	}
	result.LifeID = report.ID.String()

	if err := r.checkExpectations(step.Expectations, &report, played); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result, &report
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result, &report
}

func (r *Runner) postLife(ctx context.Context, playReq services.PlayRequest, lang string) (int, []byte, error) {
	payload, err := json.Marshal(playReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	target := r.BaseURL + "/v1/lives"
	if lang != "" {
		target += "?lang=" + url.QueryEscape(lang)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to play life: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (r *Runner) deleteLife(ctx context.Context, id uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.BaseURL+"/v1/lives/"+id.String(), nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("DELETE returned %d", resp.StatusCode)
	}
	return nil
}

// checkExpectations validates a played life against the step's expectations
func (r *Runner) checkExpectations(exp Expectations, report *services.LifeReport, played map[string]*services.LifeReport) error {
	if exp.Lang != nil && report.Lang != *exp.Lang {
		return fmt.Errorf("expected lang %s, got %s", *exp.Lang, report.Lang)
	}

	if exp.Times != nil && report.Times != *exp.Times {
		return fmt.Errorf("expected times to be %d, got %d", *exp.Times, report.Times)
	}

	// Talent ids, order independent
	if len(exp.Talents) > 0 {
		actual := make([]int, 0, len(report.Talents))
		for _, t := range report.Talents {
			actual = append(actual, t.ID)
		}
		expected := slices.Sorted(slices.Values(exp.Talents))
		slices.Sort(actual)
		if !slices.Equal(expected, actual) {
			return fmt.Errorf("expected talents %v, got %v", expected, actual)
		}
	}

	if exp.MinYears != nil && len(report.Years) < *exp.MinYears {
		return fmt.Errorf("expected at least %d years, got %d", *exp.MinYears, len(report.Years))
	}
	if exp.MaxYears != nil && len(report.Years) > *exp.MaxYears {
		return fmt.Errorf("expected at most %d years, got %d", *exp.MaxYears, len(report.Years))
	}

	log := strings.Join(report.Log, "\n")
	for _, expectedText := range exp.LogContains {
		if !strings.Contains(log, expectedText) {
			return fmt.Errorf("expected log to contain '%s', but it didn't", expectedText)
		}
	}
	for _, expectedText := range exp.ReportContains {
		if !strings.Contains(report.Report, expectedText) {
			return fmt.Errorf("expected report to contain '%s', but it didn't", expectedText)
		}
	}

	if exp.SameAs != "" {
		earlier, ok := played[exp.SameAs]
		if !ok {
			return fmt.Errorf("step %s has not played a life", exp.SameAs)
		}
		if !slices.Equal(earlier.Log, report.Log) {
			return fmt.Errorf("expected the years of step %s to repeat", exp.SameAs)
		}
	}

	return nil
}
