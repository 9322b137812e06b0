package api

import "testing"

func TestArtifact_CloneIsDeep(t *testing.T) {
	a := Artifact{
		"scalar": 42,
		"nested": map[string]any{"rate": 0.08, "inner": []any{1, 2}},
		"list":   []any{"x", map[string]any{"y": true}},
	}

	c := a.Clone()
	c["scalar"] = 0
	c["nested"].(map[string]any)["rate"] = 0.99
	c["nested"].(map[string]any)["inner"].([]any)[0] = -1
	c["list"].([]any)[1].(map[string]any)["y"] = false

	if a["scalar"] != 42 {
		t.Fatalf("scalar mutated through clone")
	}
	if a["nested"].(map[string]any)["rate"] != 0.08 {
		t.Fatalf("nested map mutated through clone")
	}
	if a["nested"].(map[string]any)["inner"].([]any)[0] != 1 {
		t.Fatalf("nested slice mutated through clone")
	}
	if a["list"].([]any)[1].(map[string]any)["y"] != true {
		t.Fatalf("map inside slice mutated through clone")
	}
}

func TestArtifact_CloneNil(t *testing.T) {
	var a Artifact
	if a.Clone() != nil {
		t.Fatalf("nil artifact should clone to nil")
	}
}

func TestArtifact_KeysSorted(t *testing.T) {
	a := Artifact{"zeta": 1, "alpha": 2, "mid": 3}
	keys := a.Keys()
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}
