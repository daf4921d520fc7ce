package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// ReadHistoryFile decodes a history export. Files ending in .yaml or .yml are
// read as YAML, everything else as JSON. Unknown fields are rejected.
func ReadHistoryFile(path string) (*models.History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var history models.History
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&history); err != nil {
			return nil, fmt.Errorf("parse history file %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&history); err != nil {
			return nil, fmt.Errorf("parse history file %s: %w", path, err)
		}
	}

	return &history, nil
}
