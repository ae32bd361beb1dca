package service

import (
	"encoding/json"
	"fmt"
	"os"
)

// FixtureCode is one pre-issued code from a deployment fixture file. Codes
// that were handed out before this service existed live in configuration,
// not in the state machine.
type FixtureCode struct {
	Code string `json:"code"`
	Note string `json:"note"`
}

// ReadFixtureFile loads a JSON array of fixture codes. A missing path is not
// an error: fixtures are optional.
func ReadFixtureFile(path string) ([]FixtureCode, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var fixtures []FixtureCode
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixture file %s: %w", path, err)
	}
	return fixtures, nil
}
