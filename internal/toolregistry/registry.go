// Package toolregistry names and schema-describes every tool the agent
// runtime is allowed to invoke (spec §4.17): a name, a function, a
// parameter schema, and a permission tag gating approval at the
// runtime layer.
package toolregistry

import "fmt"

// Permission tags gate approval requirements at the runtime layer.
const (
	PermissionProjectEdit = "project_edit"
	PermissionRunJob      = "run_job"
	PermissionExport      = "export"
)

// ParamSpec describes one parameter of a tool's schema.
type ParamSpec struct {
	Name     string
	Type     string // "string", "number", "boolean", "object", "array"
	Default  any
	Required bool
}

// Func is a registered tool's callable form: a loosely-typed argument
// bag in, a result or error out. Concrete tools close over whatever
// project/runner/etc. state they need.
type Func func(args map[string]any) (any, error)

// Spec is one registered tool.
type Spec struct {
	Name          string
	Fn            Func
	Params        []ParamSpec
	PermissionTag string
}

// Registry is the set of tools available to one agent runtime call.
// Entries are registered in a fixed order so Describe/JSONSchemas are
// stable across runs.
type Registry struct {
	specs map[string]Spec
	order []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a tool. A duplicate name overwrites the prior entry
// without disturbing its position in registration order.
func (r *Registry) Register(spec Spec) {
	if _, exists := r.specs[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.specs[spec.Name] = spec
}

// Call invokes a registered tool by name.
func (r *Registry) Call(name string, args map[string]any) (any, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("toolregistry: tool not registered: %s", name)
	}
	return spec.Fn(args)
}

// PermissionTag returns the permission tag a registered tool carries.
func (r *Registry) PermissionTag(name string) (string, bool) {
	spec, ok := r.specs[name]
	if !ok {
		return "", false
	}
	return spec.PermissionTag, true
}

// Describe returns every registered tool in registration order.
func (r *Registry) Describe() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// JSONSchema is the JSON-Schema object json_schemas() emits per tool.
type JSONSchema struct {
	Type                 string                 `json:"type"`
	Title                string                 `json:"title"`
	AdditionalProperties bool                   `json:"additionalProperties"`
	Properties           map[string]SchemaProp  `json:"properties"`
	Required             []string               `json:"required"`
}

// SchemaProp is one property entry within a JSONSchema.
type SchemaProp struct {
	Type    string `json:"type,omitempty"`
	Default any    `json:"default,omitempty"`
}

// JSONSchemas introspects every registered tool's parameters into a
// JSON-Schema object (spec §4.17's json_schemas()).
func (r *Registry) JSONSchemas() map[string]JSONSchema {
	out := make(map[string]JSONSchema, len(r.specs))
	for _, name := range r.order {
		spec := r.specs[name]
		props := make(map[string]SchemaProp, len(spec.Params))
		var required []string
		for _, p := range spec.Params {
			prop := SchemaProp{Type: p.Type}
			if !p.Required {
				prop.Default = p.Default
			} else {
				required = append(required, p.Name)
			}
			props[p.Name] = prop
		}
		out[name] = JSONSchema{
			Type: "object", Title: name, AdditionalProperties: false,
			Properties: props, Required: required,
		}
	}
	return out
}
