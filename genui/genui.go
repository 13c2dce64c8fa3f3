// Copyright (c) Microsoft. All rights reserved.

// Package genui renders the generative-UI components an Agno agent
// attaches to tool results. A [Registry] maps the closed set of
// component kinds to render functions; every payload is validated
// against the kind's JSON Schema before its renderer is looked up, so
// renderers only ever see well-formed data.
//
//	reg := genui.NewRegistry()
//	out, err := reg.Render(toolCall.UI)
//
// The built-in renderers target terminals (lipgloss); callers can
// replace them per kind with [Registry.Register].
package genui

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/microsoft/agno-client-go/agno"
)

// Kind is the closed enumeration of component kinds the demo backend
// produces.
type Kind string

const (
	KindChart   Kind = "chart"
	KindCard    Kind = "card"
	KindTable   Kind = "table"
	KindMetrics Kind = "metrics"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrUnknownKind indicates the component tag has no registered renderer.
	ErrUnknownKind = errors.New("genui: unknown component kind")

	// ErrInvalidPayload indicates the component data failed schema validation.
	ErrInvalidPayload = errors.New("genui: invalid component payload")
)

// RenderFunc renders one validated component to a string.
type RenderFunc func(c *agno.UIComponent) (string, error)

// Registry maps component kinds to schemas and renderers.
type Registry struct {
	mu      sync.RWMutex
	schemas map[Kind]*jsonschema.Schema
	renders map[Kind]RenderFunc
}

// NewRegistry creates a Registry with the built-in kinds and their
// terminal renderers registered.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: make(map[Kind]*jsonschema.Schema),
		renders: make(map[Kind]RenderFunc),
	}
	must := func(err error) {
		if err != nil {
			panic(err) // built-in schemas are compile-time constants
		}
	}
	must(r.Register(KindChart, chartSchema, renderChart))
	must(r.Register(KindCard, cardSchema, renderCards))
	must(r.Register(KindTable, tableSchema, renderTable))
	must(r.Register(KindMetrics, metricsSchema, renderMetrics))
	return r
}

// Register binds kind to a JSON Schema and a renderer, replacing any
// previous registration for the kind.
func (r *Registry) Register(kind Kind, schema string, fn RenderFunc) error {
	if fn == nil {
		return fmt.Errorf("genui: nil renderer for kind %q", kind)
	}
	compiled, err := compileSchema(string(kind), schema)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[kind] = compiled
	r.renders[kind] = fn
	return nil
}

// Kinds returns the registered kinds.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.renders))
	for k := range r.renders {
		kinds = append(kinds, k)
	}
	return kinds
}

// Validate checks a component's data against its kind's schema without
// rendering it.
func (r *Registry) Validate(c *agno.UIComponent) error {
	_, _, err := r.lookup(c)
	return err
}

// Render validates the component and renders it with the registered
// renderer. Validation runs before lookup-dependent work: an unknown
// kind and a schema violation are distinct errors.
func (r *Registry) Render(c *agno.UIComponent) (string, error) {
	_, fn, err := r.lookup(c)
	if err != nil {
		return "", err
	}
	return fn(c)
}

func (r *Registry) lookup(c *agno.UIComponent) (*jsonschema.Schema, RenderFunc, error) {
	if c == nil || c.Component == "" {
		return nil, nil, fmt.Errorf("%w: empty component tag", ErrUnknownKind)
	}
	r.mu.RLock()
	schema, ok := r.schemas[Kind(c.Component)]
	fn := r.renders[Kind(c.Component)]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, c.Component)
	}

	var payload any
	if err := json.Unmarshal(c.Data, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return schema, fn, nil
}

func compileSchema(name, doc string) (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(doc), &schemaDoc); err != nil {
		return nil, fmt.Errorf("genui: unmarshal %s schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	resource := name + ".schema.json"
	if err := c.AddResource(resource, schemaDoc); err != nil {
		return nil, fmt.Errorf("genui: add %s schema: %w", name, err)
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("genui: compile %s schema: %w", name, err)
	}
	return schema, nil
}
