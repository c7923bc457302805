package selection

import (
	"github.com/Deep145757/teams-ai/pkg/models"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// env is the expression environment exposed for each action.
type env struct {
	Name          string         `expr:"name"`
	Description   string         `expr:"description"`
	Parameters    map[string]any `expr:"parameters"`
	HasParameters bool           `expr:"has_parameters"`
}

func envFor(a models.ChatCompletionAction) env {
	return env{
		Name:          a.Name,
		Description:   a.Description,
		Parameters:    a.Parameters,
		HasParameters: a.HasParameters(),
	}
}

// Filter is a compiled boolean expression over an action, for example
// `name startsWith "get_"` or `has_parameters && description contains "weather"`.
// Safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile compiles a filter expression. The expression must yield a bool.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, models.NewError(models.ErrCodeFilter, "empty filter expression")
	}

	prg, err := expr.Compile(expression, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, models.NewErrorf(models.ErrCodeFilter,
			"filter compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	return &Filter{expression: expression, program: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expression
}

// Match reports whether the action satisfies the filter.
func (f *Filter) Match(action models.ChatCompletionAction) (bool, error) {
	out, err := vm.Run(f.program, envFor(action))
	if err != nil {
		return false, models.NewErrorf(models.ErrCodeFilter,
			"filter evaluation failed for %q: %s", f.expression, err.Error()).
			WithAction(action.Name).
			WithCause(err)
	}

	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns the matching actions in their original order.
func (f *Filter) Apply(actions []models.ChatCompletionAction) ([]models.ChatCompletionAction, error) {
	out := make([]models.ChatCompletionAction, 0, len(actions))
	for _, a := range actions {
		ok, err := f.Match(a)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}
