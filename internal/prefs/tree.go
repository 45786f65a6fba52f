package prefs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tree is a hierarchical preference document. Values are scalars (string,
// bool, float64, nil) or nested containers (Tree / map[string]any). Key paths
// address nodes as period-separated segments, e.g.
// "experiences.228.theme_weights".
type Tree map[string]any

// Parse decodes a JSON document into a Tree.
func Parse(data []byte) (Tree, error) {
	if len(data) == 0 {
		return Tree{}, nil
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse preference tree: %w", err)
	}
	if t == nil {
		t = Tree{}
	}
	return t, nil
}

// Encode renders the tree as JSON.
func (t Tree) Encode() ([]byte, error) {
	if t == nil {
		t = Tree{}
	}
	return json.Marshal(t)
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		if child, ok := asContainer(v); ok {
			out[k] = child.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Get resolves a key path. The second return is false when any segment is
// missing or a scalar is hit before the path ends.
func (t Tree) Get(keyPath string) (any, bool) {
	segments, err := splitPath(keyPath)
	if err != nil {
		return nil, false
	}
	var node any = t
	for _, seg := range segments {
		container, ok := asContainer(node)
		if !ok {
			return nil, false
		}
		node, ok = container[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Set writes a value at the key path, creating intermediate containers as
// needed. A scalar in the middle of the path is replaced by a container.
func (t Tree) Set(keyPath string, value any) error {
	segments, err := splitPath(keyPath)
	if err != nil {
		return err
	}
	node := t
	for _, seg := range segments[:len(segments)-1] {
		child, ok := asContainer(node[seg])
		if !ok {
			child = Tree{}
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}

// Clear removes the node at the key path. Missing paths are a no-op.
func (t Tree) Clear(keyPath string) {
	segments, err := splitPath(keyPath)
	if err != nil {
		return
	}
	node := t
	for _, seg := range segments[:len(segments)-1] {
		child, ok := asContainer(node[seg])
		if !ok {
			return
		}
		node = child
	}
	delete(node, segments[len(segments)-1])
}

func splitPath(keyPath string) ([]string, error) {
	trimmed := strings.TrimSpace(keyPath)
	if trimmed == "" {
		return nil, fmt.Errorf("empty key path")
	}
	segments := strings.Split(trimmed, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("key path %q has an empty segment", keyPath)
		}
	}
	return segments, nil
}

// asContainer normalizes the two container representations (Tree and the
// map[string]any produced by JSON decoding) into a Tree.
func asContainer(v any) (Tree, bool) {
	switch typed := v.(type) {
	case Tree:
		return typed, true
	case map[string]any:
		return Tree(typed), true
	default:
		return nil, false
	}
}
