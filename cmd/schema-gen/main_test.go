package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGroupSchema(t *testing.T) {
	for _, g := range groups {
		t.Run(g.Name, func(t *testing.T) {
			schema := generateGroupSchema(g)
			defs, ok := schema["$defs"].(map[string]any)
			require.True(t, ok)
			assert.NotEmpty(t, defs)
			assert.Equal(t, capitalize(g.Name)+" API Types", schema["title"])
		})
	}
}

func TestCompetitorSchemaConstraints(t *testing.T) {
	schema := generateGroupSchema(groups[0])
	dir := t.TempDir()
	path := filepath.Join(dir, "competitors.json")
	require.NoError(t, writeSchema(schema, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Defs map[string]struct {
			Properties map[string]struct {
				Enum    []string `json:"enum"`
				Minimum *float64 `json:"minimum"`
				Maximum *float64 `json:"maximum"`
			} `json:"properties"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	overrides, ok := doc.Defs["Overrides"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"margin", "discount", "both"}, overrides.Properties["discountStrategy"].Enum)
	require.NotNil(t, overrides.Properties["minMarginPercent"].Maximum)
	assert.Equal(t, 100.0, *overrides.Properties["minMarginPercent"].Maximum)
	require.NotNil(t, overrides.Properties["discountDaysValid"].Minimum)
	assert.Equal(t, 1.0, *overrides.Properties["discountDaysValid"].Minimum)
}
