package api

import "sort"

// Artifact is a structured candidate value produced by a stage: a tree of
// maps, lists, and scalars. The engine treats it as opaque; each stage
// defines its own implicit schema. Artifacts are immutable once committed
// to a WorkflowState, which is enforced by cloning on every read and write
// path.
type Artifact map[string]any

// Clone returns a deep copy of the artifact. Map and slice values are
// copied recursively; scalar values are shared.
func (a Artifact) Clone() Artifact {
	if a == nil {
		return nil
	}
	out := make(Artifact, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the sorted top-level keys of the artifact. Revisers are
// required to preserve this set (schema-preserving transform), so it is
// the unit of comparison for schema checks.
func (a Artifact) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Artifact:
		return map[string]any(t.Clone())
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
