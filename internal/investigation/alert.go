package investigation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate checks the alert before any provider call is made.
func (a Alert) Validate() error {
	if strings.TrimSpace(a.TransactionID) == "" {
		return &InvalidAlertError{Field: "transaction_id", Reason: "must not be empty"}
	}
	if math.IsNaN(a.RiskScore) || a.RiskScore < 0 || a.RiskScore > 1 {
		return &InvalidAlertError{Field: "initial_risk_score", Reason: fmt.Sprintf("must be within [0, 1], got %v", a.RiskScore)}
	}
	if a.MaxTurns < 0 {
		return &InvalidAlertError{Field: "max_turns", Reason: "must be > 0 when set"}
	}
	return nil
}

type alertFile struct {
	Alerts []Alert `json:"alerts" yaml:"alerts"`
}

// LoadAlerts reads a batch of alerts. YAML is used for .yaml and .yml files, JSON
// otherwise. The file may hold a bare list or an object with an "alerts" list.
func LoadAlerts(path string) ([]Alert, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AlertFileError{Path: path, Index: -1, Cause: err}
	}

	alerts, err := decodeAlerts(path, data)
	if err != nil {
		return nil, &AlertFileError{Path: path, Index: -1, Cause: err}
	}
	for i, a := range alerts {
		if err := a.Validate(); err != nil {
			return nil, &AlertFileError{Path: path, Index: i, Cause: err}
		}
	}
	return alerts, nil
}

func decodeAlerts(path string, data []byte) ([]Alert, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var list []Alert
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var wrapped alertFile
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Alerts, nil
	default:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var list []Alert
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, err
			}
			return list, nil
		}
		var wrapped alertFile
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Alerts, nil
	}
}
