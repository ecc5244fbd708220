package ai

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// Built-in policy names.
const (
	// PolicyRandom is always registered.
	PolicyRandom = "random"
	// PolicyLLM is registered only when a model API key is configured.
	PolicyLLM = "llm"
)

// Registry indexes DecisionPolicies by name. It is safe for concurrent use.
//
// Invariant: each name is registered at most once.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]battle.DecisionPolicy
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]battle.DecisionPolicy)}
}

// Register stores policy under name.
//
// Precondition: policy must not be nil.
// Postcondition: returns error on name collision.
func (r *Registry) Register(name string, policy battle.DecisionPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.policies[name]; exists {
		return fmt.Errorf("ai.Registry: policy %q already registered", name)
	}
	r.policies[name] = policy
	return nil
}

// PolicyFor returns the policy registered as name, or false if not registered.
func (r *Registry) PolicyFor(name string) (battle.DecisionPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for n := range r.policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterScripts registers a ScriptPolicy for every script name, each falling
// back to fallback.
func (r *Registry) RegisterScripts(caller ScriptCaller, names []string, fallback battle.DecisionPolicy, logger *zap.Logger) error {
	for _, name := range names {
		if err := r.Register(name, NewScriptPolicy(caller, name, fallback, logger.With(zap.String("policy", name)))); err != nil {
			return err
		}
	}
	return nil
}
