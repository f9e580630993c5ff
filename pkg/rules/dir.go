package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var extensions = []string{".json", ".yaml", ".yml"}

// LoadDir reads events, talents and age tables (and an optional grades
// table) from dir, in JSON or YAML, and loads them.
func LoadDir(dir string, logger *slog.Logger) (*RuleSet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var t Tables
	var errs []error
	if err := readTable(dir, TableEvents, &t.Events, true); err != nil {
		errs = append(errs, err)
	}
	if err := readTable(dir, TableTalents, &t.Talents, true); err != nil {
		errs = append(errs, err)
	}
	if err := readTable(dir, TableAges, &t.Ages, true); err != nil {
		errs = append(errs, err)
	}
	if err := readTable(dir, TableGrades, &t.Grades, false); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.Debug("Loading rule tables", "dir", dir)
	return Load(t, Options{Logger: logger})
}

// readTable decodes the first of name.json, name.yaml or name.yml in dir.
func readTable(dir, name string, into any, required bool) error {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return &LoadError{Table: name, Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		if err := decode(ext, data, into); err != nil {
			return &LoadError{Table: name, Err: fmt.Errorf("failed to decode %s: %w", path, err)}
		}
		return nil
	}
	if required {
		return &LoadError{Table: name, Err: fmt.Errorf("no %s table in %s: %w", name, dir, fs.ErrNotExist)}
	}
	return nil
}

func decode(ext string, data []byte, into any) error {
	if ext == ".json" {
		return json.Unmarshal(data, into)
	}
	return yaml.Unmarshal(data, into)
}
