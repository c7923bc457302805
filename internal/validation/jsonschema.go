package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Deep145757/teams-ai/pkg/models"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaChecker verifies that action parameters are well-formed JSON Schema
// (draft 2020-12). It checks the schema itself, never call arguments.
// It is safe for concurrent use.
type SchemaChecker struct {
	// mu guards the cache of compiled schemas.
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewSchemaChecker creates a SchemaChecker with an empty cache.
func NewSchemaChecker() *SchemaChecker {
	return &SchemaChecker{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// CheckAction returns nil when the action has no parameters or when they
// compile as a JSON Schema whose root type, if given, is "object".
func (c *SchemaChecker) CheckAction(action models.ChatCompletionAction) error {
	if !action.HasParameters() {
		return nil
	}

	if _, err := c.getOrCompile(action.Parameters); err != nil {
		return toActionError(err).WithAction(action.Name)
	}

	if t, ok := action.Parameters["type"]; ok && t != "object" {
		return models.NewErrorf(models.ErrCodeInvalidSchema,
			"parameters root type must be \"object\", got %v", t).
			WithAction(action.Name).
			WithDetails(map[string]any{"violations": []string{"/type: must be \"object\""}})
	}

	return nil
}

// CheckAll inspects a list of actions in order. Errors cover empty names
// (strict only), duplicate names and malformed schemas; warnings cover
// empty names (non-strict) and missing descriptions.
func (c *SchemaChecker) CheckAll(actions []models.ChatCompletionAction, strict bool) *Result {
	res := &Result{}
	seen := make(map[string]int, len(actions))

	for i, a := range actions {
		path := fmt.Sprintf("actions[%d]", i)

		if err := a.Validate(); err != nil {
			if strict {
				res.AddError(path+".name", a.Name, models.ErrCodeValidation, "action name is empty")
			} else {
				res.AddWarning(path+".name", a.Name, models.ErrCodeValidation, "action name is empty")
			}
		} else if first, dup := seen[a.Name]; dup {
			res.AddError(path+".name", a.Name, models.ErrCodeConflict,
				fmt.Sprintf("duplicate action name %q (first at actions[%d])", a.Name, first))
		} else {
			seen[a.Name] = i
		}

		if !a.HasDescription() {
			res.AddWarning(path+".description", a.Name, models.ErrCodeValidation,
				"action has no description; the model sees only its name")
		}

		if err := c.CheckAction(a); err != nil {
			var actErr *models.ActionError
			msg := err.Error()
			if errors.As(err, &actErr) {
				msg = actErr.Message
			}
			res.AddError(path+".parameters", a.Name, models.ErrCodeInvalidSchema, msg)
		}
	}

	return res
}

// getOrCompile returns a cached compiled schema or compiles and caches a new one.
// The cache key is the canonical JSON encoding of the parameters.
func (c *SchemaChecker) getOrCompile(parameters map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	key := string(raw)

	c.mu.RLock()
	if cached, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	url := fmt.Sprintf("teams-ai://action-parameters/%d", len(c.cache))

	// A fresh compiler per schema avoids resource collisions.
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	c.cache[key] = compiled
	return compiled, nil
}

// toActionError converts a compile failure into an INVALID_SCHEMA error,
// flattening metaschema violations into details.
func toActionError(err error) *models.ActionError {
	var verr *jsonschema.ValidationError
	var sverr *jsonschema.SchemaValidationError
	var found bool
	if errors.As(err, &sverr) {
		found = errors.As(sverr.Err, &verr)
	} else {
		found = errors.As(err, &verr)
	}

	if !found {
		return models.NewError(models.ErrCodeInvalidSchema, err.Error()).WithCause(err)
	}

	violations := collectViolations(verr)
	msg := "parameters are not a valid JSON Schema"
	if len(violations) == 1 {
		msg = violations[0]
	} else if len(violations) > 1 {
		msg = fmt.Sprintf("parameters are not a valid JSON Schema: %d violations", len(violations))
	}

	return models.NewError(models.ErrCodeInvalidSchema, msg).
		WithCause(err).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
