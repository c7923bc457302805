package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Deep145757/teams-ai/pkg/models"
)

// Registry is a thread-safe collection of actions keyed by name.
// Entries are cloned on the way in and on the way out.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]models.ChatCompletionAction
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]models.ChatCompletionAction),
	}
}

// Register adds an action to the registry. Returns error on duplicate name.
func (r *Registry) Register(action models.ChatCompletionAction) error {
	if err := action.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[action.Name]; exists {
		return models.NewErrorf(models.ErrCodeConflict, "action %q already registered", action.Name).
			WithAction(action.Name)
	}

	r.actions[action.Name] = action.Clone()
	return nil
}

// Replace updates an existing action.
func (r *Registry) Replace(action models.ChatCompletionAction) error {
	if err := action.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[action.Name]; !exists {
		return models.NewErrorf(models.ErrCodeNotFound, "action %q not registered", action.Name).
			WithAction(action.Name)
	}

	r.actions[action.Name] = action.Clone()
	return nil
}

// Remove deletes an action by name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[name]; !exists {
		return models.NewErrorf(models.ErrCodeNotFound, "action %q not registered", name).
			WithAction(name)
	}
	delete(r.actions, name)
	return nil
}

// Get retrieves an action by name.
func (r *Registry) Get(name string) (models.ChatCompletionAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[name]
	if !ok {
		return models.ChatCompletionAction{}, models.NewErrorf(models.ErrCodeNotFound, "action %q not registered", name).
			WithAction(name)
	}
	return action.Clone(), nil
}

// List returns all registered actions, sorted by name.
func (r *Registry) List() []models.ChatCompletionAction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.ChatCompletionAction, 0, len(r.actions))
	for _, a := range r.actions {
		list = append(list, a.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// RegisterNamespace bulk-registers actions under a prefixed namespace.
// Each action name becomes "prefix_originalName" (e.g. "graph_get_document").
// Returns the number registered before the first conflict.
func (r *Registry) RegisterNamespace(prefix string, acts []models.ChatCompletionAction) (int, error) {
	if prefix == "" {
		return 0, models.NewError(models.ErrCodeValidation, "namespace prefix is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	registered := 0
	for _, a := range acts {
		if a.Name == "" {
			return registered, models.NewError(models.ErrCodeValidation, "action name is empty")
		}
		prefixed := fmt.Sprintf("%s_%s", prefix, a.Name)
		if _, exists := r.actions[prefixed]; exists {
			return registered, models.NewErrorf(models.ErrCodeConflict, "namespaced action %q already registered", prefixed).
				WithAction(prefixed)
		}
		c := a.Clone()
		c.Name = prefixed
		r.actions[prefixed] = c
		registered++
	}
	return registered, nil
}

// Has checks if an action is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
