// Package persistence provides the long-term memory and run-event store
// implementations backing the engine: an in-memory store for tests and
// development, and a SQLite store for embedded durability.
package persistence

import (
	"encoding/json"

	"github.com/jkoskel/refino/pkg/api"
)

// EncodeArtifact serializes an artifact to its canonical JSON text. The
// text form is what memory search matches against, so it must be stable
// and human-readable.
func EncodeArtifact(a api.Artifact) (string, error) {
	if a == nil {
		return "", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeArtifact parses the JSON text form back into an artifact.
func DecodeArtifact(s string) (api.Artifact, error) {
	if s == "" {
		return nil, nil
	}
	var a api.Artifact
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, err
	}
	return a, nil
}
