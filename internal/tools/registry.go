package tools

import "context"

// Handler is the execution function for a tool. It receives parsed JSON
// arguments and returns a JSON-encoded result string. Every tool here is
// read-only: handlers never mutate the cache.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Definition describes a single capability in the registry: a name, a
// human-readable description, a JSON Schema for its input and the handler.
// Plain composition — no base type, no inheritance.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// Registry maps tool names to definitions for the JSON-RPC dispatcher.
type Registry struct {
	tools []Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Definition) {
	r.tools = append(r.tools, t)
}

// Get returns the Definition for a given tool name, and whether it was found.
func (r *Registry) Get(name string) (Definition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Definition{}, false
}

// All returns all registered tools in registration order.
func (r *Registry) All() []Definition {
	return r.tools
}
