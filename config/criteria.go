package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	apperrors "ymurakami/suumowatcher/pkg/errors"
)

// LoadCriteria reads search criteria from path, decoding YAML or JSON by
// file extension. A missing file is bootstrapped with a commented example
// and returns no criteria, so a fresh deployment fails loudly at the "no
// criteria" check instead of silently watching nothing.
func LoadCriteria(path string) ([]scraper.Criterion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Criteria file %s not found, writing an example", path)
			if writeErr := writeExampleCriteria(path); writeErr != nil {
				logger.Error("Failed to write example criteria file: %v", writeErr)
			}
			return nil, nil
		}
		return nil, apperrors.NewConfiguration("failed to read criteria file "+path, err)
	}

	var criteria []scraper.Criterion
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &criteria)
	default:
		err = json.Unmarshal(data, &criteria)
	}
	if err != nil {
		return nil, apperrors.NewConfiguration("failed to decode criteria file "+path, err)
	}

	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

func validateCriteria(criteria []scraper.Criterion) error {
	names := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		if c.Name == "" {
			return apperrors.NewConfiguration("criterion with empty name", nil)
		}
		if _, dup := names[c.Name]; dup {
			return apperrors.NewConfiguration("duplicate criterion name: "+c.Name, nil)
		}
		names[c.Name] = struct{}{}
	}
	return nil
}

const exampleCriteria = `# Search criteria for the listing watcher.
# Each entry becomes one independent store partition keyed by name.
#
#- name: Shibuya-1K
#  prefecture: 東京都
#  city: 渋谷区
#  maxRent: 12
#  layouts: [1K, 1DK]
#  maxWalkMinutes: 10
#  maxAgeYears: 20
#  petsAllowed: true
#  otherConditions:
#    cn: "9999999"
`

func writeExampleCriteria(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(exampleCriteria), 0o644)
}
