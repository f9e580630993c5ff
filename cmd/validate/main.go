package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/rules"
)

func main() {
	dir := "./data"
	strict := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-strict", "--strict":
			strict = true
		case "-h", "--help":
			fmt.Fprintf(os.Stderr, "Usage: %s [-strict] [rules-dir]\n", os.Args[0])
			os.Exit(0)
		default:
			dir = arg
		}
	}

	validator := &RulesValidator{}
	if err := validator.validateDir(dir, strict); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Rule tables are valid!")
}

type RulesValidator struct {
	errors   []string
	warnings []string
}

func (v *RulesValidator) validateDir(dir string, strict bool) error {
	fmt.Printf("Validating %s...\n", dir)
	v.errors, v.warnings = nil, nil

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs, err := rules.LoadDir(dir, logger)
	if err != nil {
		v.collectLoadErrors(err)
		return fmt.Errorf("%d problem(s) in %s:\n%s", len(v.errors), dir, strings.Join(v.errors, "\n"))
	}

	fmt.Printf("Loaded %d events, %d talents and %d ages\n", rs.NumEvents(), rs.NumTalents(), rs.NumAges())

	for _, id := range rs.Unreachable() {
		v.addWarning(fmt.Sprintf("event %d can never occur", id))
	}
	if len(v.warnings) > 0 {
		fmt.Printf("Warnings:\n%s\n", strings.Join(v.warnings, "\n"))
		if strict {
			return fmt.Errorf("%d warning(s) in strict mode", len(v.warnings))
		}
	}
	return nil
}

// collectLoadErrors flattens the joined load errors into one line each.
func (v *RulesValidator) collectLoadErrors(err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			v.collectLoadErrors(e)
		}
		return
	}
	v.addError(err.Error())
}

func (v *RulesValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *RulesValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}
