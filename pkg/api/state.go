package api

import (
	"fmt"
	"sort"
)

// WorkflowState is the shared key/value workspace of one pipeline run:
// created per run, read by every stage, written once per stage, and
// discarded (or exported) when the run ends. It is exclusively owned by
// its run; concurrent runs must each construct their own instance. Access
// within a run is single-threaded at the stage level, so no locking is
// performed.
type WorkflowState struct {
	values map[string]Artifact
	owner  map[string]string
}

const seedOwner = "(seed)"

// NewWorkflowState creates a workflow state, optionally seeded with
// initial artifacts (for example the user's request). Seeded values are
// deep-copied and may not be overwritten by any stage.
func NewWorkflowState(seed map[string]Artifact) *WorkflowState {
	s := &WorkflowState{
		values: make(map[string]Artifact, len(seed)),
		owner:  make(map[string]string, len(seed)),
	}
	for k, v := range seed {
		s.values[k] = v.Clone()
		s.owner[k] = seedOwner
	}
	return s
}

// Get returns a deep copy of the artifact committed under key. Committed
// artifacts are immutable; copying keeps callers from mutating them in
// place.
func (s *WorkflowState) Get(key string) (Artifact, bool) {
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Has reports whether key has been committed.
func (s *WorkflowState) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the sorted set of committed keys.
func (s *WorkflowState) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of committed keys.
func (s *WorkflowState) Len() int {
	return len(s.values)
}

// Commit stores a deep copy of the artifact under key on behalf of the
// named stage. A stage may re-commit its own output key, but never a key
// committed by another stage or seeded at run start.
func (s *WorkflowState) Commit(stage, key string, a Artifact) error {
	if prev, ok := s.owner[key]; ok && prev != stage {
		return fmt.Errorf("stage %s cannot commit key %q owned by %s: %w", stage, key, prev, ErrOutputConflict)
	}
	s.values[key] = a.Clone()
	s.owner[key] = stage
	return nil
}

// Snapshot returns deep copies of the artifacts under the given keys,
// suitable for handing to a generator as its read-only context. The
// second return value names the first missing key, if any.
func (s *WorkflowState) Snapshot(keys []string) (map[string]Artifact, string) {
	out := make(map[string]Artifact, len(keys))
	for _, k := range keys {
		v, ok := s.values[k]
		if !ok {
			return nil, k
		}
		out[k] = v.Clone()
	}
	return out, ""
}
