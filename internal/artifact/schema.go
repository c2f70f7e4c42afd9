package artifact

// BuildStaffingJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the staffing artifact. Every artifact is validated
// against it before it is written, so downstream consumers can rely on the
// shape without defensive parsing.
func BuildStaffingJSONSchema() map[string]any {
	entry := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":         map[string]any{"type": "string", "minLength": 1},
			"role":         map[string]any{"type": "string"},
			"primary_role": map[string]any{"type": "string"},
			"level":        map[string]any{"type": "string"},
			"workstream":   map[string]any{"type": "string"},
			"location":     map[string]any{"type": "string"},
			"percentage":   nullableNumber(0.0, 100.0),
			"hours":        nullableNumber(0.0, -1),
			"months":       nullableNumber(0.0, -1),
			"provenance": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"page":               map[string]any{"type": "integer", "minimum": 0},
					"source_table_index": map[string]any{"type": "integer", "minimum": 0},
					"row_index":          map[string]any{"type": "integer", "minimum": 0},
					"column_values": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"required": []string{"page", "source_table_index", "row_index"},
			},
		},
		"required": []string{"name", "provenance"},
		// At least one allocation value is always present on a parsed row.
		"anyOf": []any{
			map[string]any{"properties": map[string]any{"percentage": map[string]any{"type": "number"}}},
			map[string]any{"properties": map[string]any{"hours": map[string]any{"type": "number"}}},
		},
	}

	minimalEntry := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":         nullableString(),
			"level":        nullableString(),
			"title":        map[string]any{"type": "string", "minLength": 1},
			"primary_role": nullableString(),
			"hours":        nullableNumber(0.0, -1),
			"hours_pct":    nullableNumber(0.0, 100.0),
		},
		"required": []string{"title"},
	}

	staffing := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"staffing_plan_present": map[string]any{"type": "boolean"},
			"plan_type": map[string]any{
				"type": "string",
				"enum": []string{"table", "list", "mixed", "none"},
			},
			"entries": map[string]any{"type": "array", "items": entry},
			"totals": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"hours":                  nullableNumber(0.0, -1),
					"fte_yearly_hours_basis": map[string]any{"type": "number", "exclusiveMinimum": 0.0},
				},
				"required": []string{"fte_yearly_hours_basis"},
			},
		},
		"required": []string{"staffing_plan_present", "plan_type", "entries", "totals"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"source_file":     map[string]any{"type": "string", "minLength": 1},
			"extraction_tier": map[string]any{"type": "string"},
			"generated_at":    map[string]any{"type": "string"},
			"staffing":        staffing,
			"minimal_entries": map[string]any{"type": "array", "items": minimalEntry},
		},
		"required": []string{"source_file", "extraction_tier", "staffing", "minimal_entries"},
	}
}

func nullableNumber(min, max float64) map[string]any {
	num := map[string]any{"type": "number", "minimum": min}
	if max >= 0 {
		num["maximum"] = max
	}
	return map[string]any{
		"oneOf": []any{num, map[string]any{"type": "null"}},
	}
}

func nullableString() map[string]any {
	return map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{"type": "null"},
		},
	}
}
