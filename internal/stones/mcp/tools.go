package mcp

import (
	"context"
	"encoding/json"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type                 string              `json:"type,omitempty"`
	Description          string              `json:"description,omitempty"`
	Default              any                 `json:"default,omitempty"`
	Enum                 []string            `json:"enum,omitempty"`
	Minimum              *float64            `json:"minimum,omitempty"`
	Maximum              *float64            `json:"maximum,omitempty"`
	Items                *Property           `json:"items,omitempty"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *Property           `json:"additionalProperties,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		planBuildTool(),
		planBatchTool(),
		stoneLookupTool(),
		resolveGoalsTool(),
		planHistoryTool(),
	}
}

func bound(v float64) *float64 { return &v }

func goalsProperty() Property {
	return Property{
		Type:        "array",
		Description: "Defensive stat goals, e.g. {\"stat\": \"Dodge\", \"value\": 60}. Duplicate stats are summed.",
		Items: &Property{
			Type: "object",
			Properties: map[string]Property{
				"stat":  {Type: "string", Description: "Stat name, synonym or short form (Dodge, ZDR, DR, MS, ...)"},
				"value": {Type: "number", Description: "Total amount wanted; non-positive values are ignored"},
			},
			Required: []string{"stat", "value"},
		},
	}
}

func inventoryProperty() Property {
	pair := Property{
		Type: "object",
		Properties: map[string]Property{
			"primary":   {Type: "string"},
			"secondary": {Type: "string"},
			"quantity":  {Type: "integer"},
		},
		Required: []string{"primary", "secondary", "quantity"},
	}
	triple := Property{
		Type: "object",
		Properties: map[string]Property{
			"primary":   {Type: "string"},
			"secondary": {Type: "string"},
			"tertiary":  {Type: "string"},
			"quantity":  {Type: "integer"},
		},
		Required: []string{"primary", "secondary", "tertiary", "quantity"},
	}

	return Property{
		Type:        "object",
		Description: "Stones the player already owns",
		Properties: map[string]Property{
			"baseCounts": {
				Type:                 "object",
				Description:          "Rank 7 base stones owned (stone key -> count)",
				AdditionalProperties: &Property{Type: "integer"},
			},
			"pairComposites":   {Type: "array", Description: "Owned super stones", Items: &pair},
			"tripleComposites": {Type: "array", Description: "Owned mega stones", Items: &triple},
		},
	}
}

func optionsProperty() Property {
	return Property{
		Type:        "object",
		Description: "Search limits; zero or missing fields use the server defaults",
		Properties: map[string]Property{
			"maxMerges":       {Type: "integer", Description: "Merge budget for search", Minimum: bound(0)},
			"beamWidth":       {Type: "integer", Description: "States kept per beam layer", Minimum: bound(0), Maximum: bound(512)},
			"topChildren":     {Type: "integer", Description: "Children expanded per state", Minimum: bound(0), Maximum: bound(256)},
			"timeLimitMs":     {Type: "integer", Description: "Beam search time limit in milliseconds", Minimum: bound(0), Maximum: bound(60000)},
			"tryExactMegaMix": {Type: "boolean", Description: "Try the constructive triple solver first", Default: true},
			"disablePrefill":  {Type: "boolean", Description: "Skip placing owned stones up front", Default: false},
		},
	}
}

func planBuildTool() ToolDefinition {
	return ToolDefinition{
		Name:        "plan_build",
		Description: "Plan which stones to put in the 12 defensive sockets to reach the stat goals with as few merges as possible, reusing owned stones. Returns the sockets, merge steps and missing rank 7 stones.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"goals":     goalsProperty(),
				"inventory": inventoryProperty(),
				"options":   optionsProperty(),
			},
			Required: []string{"goals"},
		},
	}
}

func planBatchTool() ToolDefinition {
	request := Property{
		Type: "object",
		Properties: map[string]Property{
			"goals":     goalsProperty(),
			"inventory": inventoryProperty(),
			"options":   optionsProperty(),
		},
		Required: []string{"goals"},
	}

	return ToolDefinition{
		Name:        "plan_batch",
		Description: "Run several independent plan_build requests in parallel. Results come back in request order.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"requests": {Type: "array", Description: "plan_build requests", Items: &request},
			},
			Required: []string{"requests"},
		},
	}
}

func stoneLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "stone_lookup",
		Description: "Get a stone type's stats and rank 7 values, or search stones by name or stat.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"stone":  {Type: "string", Description: "Stone key or name"},
				"search": {Type: "string", Description: "Search term matched against key, name and stat"},
			},
		},
	}
}

func resolveGoalsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "resolve_goals",
		Description: "Show how goals map to stat targets and stone types, and which goals would be dropped.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"goals": goalsProperty(),
			},
			Required: []string{"goals"},
		},
	}
}

func planHistoryTool() ToolDefinition {
	return ToolDefinition{
		Name:        "plan_history",
		Description: "List the most recent planning runs.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"limit": {Type: "integer", Description: "Max runs to return", Default: 20, Minimum: bound(1), Maximum: bound(200)},
			},
		},
	}
}

func (s *Server) toolPlanBuild(ctx context.Context, args json.RawMessage) (any, error) {
	var req stones.PlanBuildRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.PlanBuild(ctx, req)
}

func (s *Server) toolPlanBatch(ctx context.Context, args json.RawMessage) (any, error) {
	var req stones.PlanBatchRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.PlanBatch(ctx, req)
}

func (s *Server) toolStoneLookup(ctx context.Context, args json.RawMessage) (any, error) {
	var req stones.StoneLookupRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.StoneLookup(ctx, req)
}

func (s *Server) toolResolveGoals(ctx context.Context, args json.RawMessage) (any, error) {
	var req stones.ResolveGoalsRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.ResolveGoals(ctx, req)
}

func (s *Server) toolPlanHistory(ctx context.Context, args json.RawMessage) (any, error) {
	var req stones.PlanHistoryRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	return s.engine.PlanHistory(ctx, req)
}
