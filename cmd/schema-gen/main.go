// Schema Generator
//
// Generates JSON Schema files from the Go API types so admin front ends can
// validate requests and responses against the same definitions.
//
// Usage:
//
//	go run ./cmd/schema-gen [output-dir]
//
// Output (default directory ./schemas):
//
//	competitors.json
//	discounts.json
//	settings.json
//	statistics.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/artpricematcher/price-matcher/internal/competitors"
	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/handlers"
	"github.com/artpricematcher/price-matcher/internal/runner"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

var groups = []SchemaGroup{
	{
		Name: "competitors",
		Types: []any{
			// Request types
			competitors.Details{},
			competitors.Overrides{},
			// Response types
			types.Competitor{},
			handlers.ListCompetitorsResponse{},
			handlers.ToggleResponse{},
		},
		Output: "competitors.json",
	},
	{
		Name: "discounts",
		Types: []any{
			// Request types
			handlers.ListDiscountsRequest{},
			handlers.ExtendRequest{},
			// Response types
			types.ActiveDiscountView{},
			discounts.Page{},
			types.PriceMatch{},
			handlers.PriceDifferencesResponse{},
			discounts.UpdateResult{},
			discounts.UpdateAllResult{},
			discounts.CleanResult{},
			runner.Report{},
		},
		Output: "discounts.json",
	},
	{
		Name: "settings",
		Types: []any{
			settings.Global{},
			handlers.TokenResponse{},
		},
		Output: "settings.json",
	},
	{
		Name: "statistics",
		Types: []any{
			handlers.SummaryRequest{},
			handlers.RecentRequest{},
			handlers.SummaryResponse{},
			handlers.RecentResponse{},
		},
		Output: "statistics.json",
	},
}

func main() {
	outputDir := "schemas"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range groups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)

		typeName := ""
		if schema.Ref != "" {
			// "#/$defs/Competitor"
			typeName = filepath.Base(schema.Ref)
		}

		for name, def := range schema.Definitions {
			definitions[name] = def
		}
		if typeName != "" && schema.Definitions[typeName] != nil {
			definitions[typeName] = schema.Definitions[typeName]
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://schemas.price-matcher.dev/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
