package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const criteriaYAML = `
- name: Shibuya-1K
  prefecture: 東京都
  city: 渋谷区
  maxRent: 12
  layouts: [1K, 1DK]
  maxWalkMinutes: 10
  petsAllowed: true
- name: Osaka-Family
  prefecture: 大阪府
  minRent: 8
  maxRent: 20
  layouts: [2LDK, 3LDK]
  hasParking: true
  otherConditions:
    cn: "9999999"
`

const criteriaJSON = `[
  {
    "name": "Yokohama",
    "prefecture": "神奈川県",
    "maxRent": 10,
    "maxAgeYears": 15
  }
]`

func writeTempCriteria(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCriteriaYAML(t *testing.T) {
	path := writeTempCriteria(t, "criteria.yaml", criteriaYAML)

	criteria, err := LoadCriteria(path)
	require.NoError(t, err)
	require.Len(t, criteria, 2)

	first := criteria[0]
	assert.Equal(t, "Shibuya-1K", first.Name)
	assert.Equal(t, "東京都", first.Prefecture)
	assert.Equal(t, "渋谷区", first.City)
	assert.Equal(t, 12, first.MaxRent)
	assert.Equal(t, []string{"1K", "1DK"}, first.Layouts)
	assert.Equal(t, 10, first.MaxWalkMinutes)
	assert.True(t, first.PetsAllowed)
	assert.False(t, first.HasParking)

	second := criteria[1]
	assert.Equal(t, 8, second.MinRent)
	assert.True(t, second.HasParking)
	assert.Equal(t, "9999999", second.OtherConditions["cn"])
}

func TestLoadCriteriaJSON(t *testing.T) {
	path := writeTempCriteria(t, "criteria.json", criteriaJSON)

	criteria, err := LoadCriteria(path)
	require.NoError(t, err)
	require.Len(t, criteria, 1)
	assert.Equal(t, "Yokohama", criteria[0].Name)
	assert.Equal(t, "神奈川県", criteria[0].Prefecture)
	assert.Equal(t, 15, criteria[0].MaxAgeYears)
}

func TestLoadCriteriaMissingFileBootstrapsExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")

	criteria, err := LoadCriteria(path)
	require.NoError(t, err)
	assert.Empty(t, criteria)

	// The example written in place is fully commented out, so loading it
	// again still yields nothing.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#- name:")

	criteria, err = LoadCriteria(path)
	require.NoError(t, err)
	assert.Empty(t, criteria)
}

func TestLoadCriteriaRejectsMalformed(t *testing.T) {
	path := writeTempCriteria(t, "criteria.yaml", "{not yaml: [")
	_, err := LoadCriteria(path)
	assert.Error(t, err)
}

func TestLoadCriteriaRejectsEmptyName(t *testing.T) {
	path := writeTempCriteria(t, "criteria.yaml", "- prefecture: 東京都\n")
	_, err := LoadCriteria(path)
	assert.Error(t, err)
}

func TestLoadCriteriaRejectsDuplicateNames(t *testing.T) {
	path := writeTempCriteria(t, "criteria.yaml",
		"- name: same\n  prefecture: 東京都\n- name: same\n  prefecture: 大阪府\n")
	_, err := LoadCriteria(path)
	assert.Error(t, err)
}
