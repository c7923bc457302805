package models

import (
	"encoding/json"
	"reflect"
)

// ChatCompletionAction is an action that can be called by an LLM.
// Values are constructed once and not mutated afterwards; use Clone when a
// holder needs its own copy of Parameters.
type ChatCompletionAction struct {
	// Name of the action to be called.
	Name string `json:"name" yaml:"name"`
	// Description of what the action does. Empty means absent.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Parameters the action accepts, described as a JSON Schema object.
	// Nil means absent. No validation is performed here.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ActionOption sets an optional field at construction time.
type ActionOption func(*ChatCompletionAction)

// WithDescription sets the action description.
func WithDescription(description string) ActionOption {
	return func(a *ChatCompletionAction) {
		a.Description = description
	}
}

// WithParameters sets the JSON Schema describing the action arguments.
func WithParameters(parameters map[string]any) ActionOption {
	return func(a *ChatCompletionAction) {
		a.Parameters = parameters
	}
}

// NewChatCompletionAction creates an action. Values are stored as given.
func NewChatCompletionAction(name string, opts ...ActionOption) ChatCompletionAction {
	a := ChatCompletionAction{Name: name}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// HasDescription reports whether a description is present.
func (a ChatCompletionAction) HasDescription() bool {
	return a.Description != ""
}

// HasParameters reports whether a parameter schema is present.
func (a ChatCompletionAction) HasParameters() bool {
	return a.Parameters != nil
}

// Validate rejects actions without a name.
func (a ChatCompletionAction) Validate() error {
	if a.Name == "" {
		return NewError(ErrCodeValidation, "action name is empty")
	}
	return nil
}

// Equal reports structural equality. Parameters compare by their JSON
// encoding, so []string and []any holding the same values are equal.
// Presence is compared first: nil Parameters (absent) never equal a
// non-nil empty map, even though omitempty drops both on the wire.
func (a ChatCompletionAction) Equal(other ChatCompletionAction) bool {
	if a.Name != other.Name || a.Description != other.Description {
		return false
	}
	if a.HasParameters() != other.HasParameters() {
		return false
	}
	if !a.HasParameters() {
		return true
	}

	left, lerr := json.Marshal(a.Parameters)
	right, rerr := json.Marshal(other.Parameters)
	if lerr != nil || rerr != nil {
		return reflect.DeepEqual(a.Parameters, other.Parameters)
	}
	return string(left) == string(right)
}

// Clone returns a copy whose Parameters share no maps or slices with a.
func (a ChatCompletionAction) Clone() ChatCompletionAction {
	out := a
	if a.Parameters != nil {
		out.Parameters = cloneMap(a.Parameters)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
