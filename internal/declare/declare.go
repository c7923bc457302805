// Package declare converts actions into the tool declarations expected by
// model providers and MCP clients. Nothing here sends anything.
package declare

import (
	"encoding/json"

	"github.com/Deep145757/teams-ai/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// FunctionTool is the chat-completions tool declaration:
// {"type":"function","function":{"name":...,"description":...,"parameters":...}}.
type FunctionTool struct {
	Type     string                      `json:"type"`
	Function models.ChatCompletionAction `json:"function"`
}

// Function wraps an action as a function tool.
func Function(action models.ChatCompletionAction) FunctionTool {
	return FunctionTool{Type: "function", Function: action}
}

// Functions converts a list of actions, preserving order.
func Functions(actions []models.ChatCompletionAction) []FunctionTool {
	out := make([]FunctionTool, 0, len(actions))
	for _, a := range actions {
		out = append(out, Function(a))
	}
	return out
}

// MCPTool converts an action into an MCP tool. Actions without parameters get
// an empty object input schema, which MCP requires; parameters whose root
// type is set to anything but "object" are rejected.
func MCPTool(action models.ChatCompletionAction) (mcp.Tool, error) {
	if err := action.Validate(); err != nil {
		return mcp.Tool{}, err
	}

	if !action.HasParameters() {
		return mcp.NewTool(action.Name, mcp.WithDescription(action.Description)), nil
	}

	if t, ok := action.Parameters["type"]; ok && t != "object" {
		return mcp.Tool{}, models.NewErrorf(models.ErrCodeInvalidSchema,
			"MCP input schema must have type \"object\", got %v", t).
			WithAction(action.Name)
	}

	raw, err := json.Marshal(action.Parameters)
	if err != nil {
		return mcp.Tool{}, models.NewError(models.ErrCodeInvalidSchema, "parameters are not JSON-encodable").
			WithAction(action.Name).
			WithCause(err)
	}
	return mcp.NewToolWithRawSchema(action.Name, action.Description, raw), nil
}

// MCPTools converts a list of actions. The first failure aborts.
func MCPTools(actions []models.ChatCompletionAction) ([]mcp.Tool, error) {
	out := make([]mcp.Tool, 0, len(actions))
	for _, a := range actions {
		tool, err := MCPTool(a)
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, nil
}
