package prefs_test

import (
	"testing"

	"cadenza/internal/prefs"
)

func TestMergeLocalWinsOnLeafConflict(t *testing.T) {
	local := prefs.Tree{
		"volume": 0.9,
		"experiences": prefs.Tree{
			"228": prefs.Tree{"favorite": true},
		},
	}
	remote := prefs.Tree{
		"volume": 0.2,
		"theme":  "dark",
		"experiences": prefs.Tree{
			"228": prefs.Tree{"favorite": false, "plays": 12},
			"301": prefs.Tree{"favorite": true},
		},
	}

	merged := prefs.Merge(local, remote)

	want := prefs.Tree{
		"volume": 0.9,
		"theme":  "dark",
		"experiences": prefs.Tree{
			"228": prefs.Tree{"favorite": true, "plays": 12},
			"301": prefs.Tree{"favorite": true},
		},
	}
	if !prefs.Equal(want, merged) {
		t.Fatalf("merge mismatch:\n got %#v\nwant %#v", merged, want)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	doc := prefs.Tree{
		"a": 1.0,
		"b": prefs.Tree{"c": "x", "d": prefs.Tree{"e": true}},
	}
	if !prefs.Equal(doc, prefs.Merge(doc, doc)) {
		t.Fatal("Merge(X, X) != X")
	}
}

func TestMergeKeepsOneSidedKeys(t *testing.T) {
	local := prefs.Tree{"only_local": 1.0}
	remote := prefs.Tree{"only_remote": 2.0}
	merged := prefs.Merge(local, remote)
	want := prefs.Tree{"only_local": 1.0, "only_remote": 2.0}
	if !prefs.Equal(want, merged) {
		t.Fatalf("one-sided keys dropped: %#v", merged)
	}
}

func TestMergeContainerVsScalarLocalWins(t *testing.T) {
	local := prefs.Tree{"x": prefs.Tree{"nested": true}}
	remote := prefs.Tree{"x": "scalar"}
	merged := prefs.Merge(local, remote)
	if !prefs.Equal(local, merged) {
		t.Fatalf("expected local container to win, got %#v", merged)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := prefs.Tree{"shared": prefs.Tree{"a": 1.0}}
	remote := prefs.Tree{"shared": prefs.Tree{"b": 2.0}}
	_ = prefs.Merge(local, remote)

	if _, ok := local["shared"].(prefs.Tree)["b"]; ok {
		t.Fatal("local mutated by merge")
	}
	if _, ok := remote["shared"].(prefs.Tree)["a"]; ok {
		t.Fatal("remote mutated by merge")
	}
}

func TestKeyPathAccess(t *testing.T) {
	doc := prefs.Tree{}
	if err := doc.Set("experiences.228.theme_weights", []any{0.5, 0.5}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok := doc.Get("experiences.228.theme_weights")
	if !ok {
		t.Fatal("expected value at key path")
	}
	weights, isSlice := value.([]any)
	if !isSlice || len(weights) != 2 {
		t.Fatalf("unexpected value: %#v", value)
	}

	if _, ok := doc.Get("experiences.999"); ok {
		t.Fatal("expected miss for unset path")
	}

	doc.Clear("experiences.228.theme_weights")
	if _, ok := doc.Get("experiences.228.theme_weights"); ok {
		t.Fatal("expected path cleared")
	}
	// Clearing a missing path is a no-op.
	doc.Clear("does.not.exist")
}

func TestParseEncodeRoundTrip(t *testing.T) {
	raw := []byte(`{"volume":0.8,"experiences":{"228":{"favorite":true}}}`)
	tree, err := prefs.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	value, ok := tree.Get("experiences.228.favorite")
	if !ok || value != true {
		t.Fatalf("unexpected value: %#v", value)
	}

	encoded, err := tree.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	again, err := prefs.Parse(encoded)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	if !prefs.Equal(tree, again) {
		t.Fatal("round trip changed the document")
	}
}
