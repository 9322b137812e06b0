package api

import "context"

// Tool is one named read-only query capability (a price lookup, a
// fundamentals fetch, a news search). The engine treats tools as opaque
// capabilities of the generator: it filters the catalog per stage and
// passes the result through, but never invokes, schedules, or caches
// tool calls itself.
type Tool interface {
	Name() string
	Description() string
	Fetch(ctx context.Context, params map[string]any) (Artifact, error)
}

// ToolCatalog is an ordered, named set of tools. The zero value is an
// empty catalog.
type ToolCatalog struct {
	order []string
	tools map[string]Tool
}

// NewToolCatalog builds a catalog from the given tools, preserving order.
// A tool with a duplicate name replaces the earlier one in place.
func NewToolCatalog(tools ...Tool) ToolCatalog {
	c := ToolCatalog{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil {
			continue
		}
		if _, ok := c.tools[t.Name()]; !ok {
			c.order = append(c.order, t.Name())
		}
		c.tools[t.Name()] = t
	}
	return c
}

// Lookup returns the tool with the given name.
func (c ToolCatalog) Lookup(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Names returns the tool names in catalog order.
func (c ToolCatalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of tools in the catalog.
func (c ToolCatalog) Len() int {
	return len(c.order)
}

// Filter returns the sub-catalog containing only the named tools, in
// catalog order. Names not present in the catalog are ignored.
func (c ToolCatalog) Filter(names ...string) ToolCatalog {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := ToolCatalog{tools: make(map[string]Tool)}
	for _, n := range c.order {
		if want[n] {
			out.order = append(out.order, n)
			out.tools[n] = c.tools[n]
		}
	}
	return out
}
