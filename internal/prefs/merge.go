package prefs

import (
	"errors"
	"reflect"
)

// ErrNoChange reports that a sync pass produced a document identical to what
// the written side already holds.
var ErrNoChange = errors.New("merge produced no change")

// ErrNoSuchUser reports that the remote side has no preference row for the
// current user identity.
var ErrNoSuchUser = errors.New("no such user")

// Merge deep-merges two preference trees. For a leaf key present on both
// sides the local value wins; keys present on only one side are kept; when
// both sides hold containers they are merged key-by-key rather than replaced
// wholesale. Neither input is mutated.
func Merge(local, remote Tree) Tree {
	out := remote.Clone()
	for key, localVal := range local {
		remoteVal, present := out[key]
		if !present {
			out[key] = cloneValue(localVal)
			continue
		}
		localChild, localIsContainer := asContainer(localVal)
		remoteChild, remoteIsContainer := asContainer(remoteVal)
		if localIsContainer && remoteIsContainer {
			out[key] = Merge(localChild, remoteChild)
			continue
		}
		// Conflict at a leaf (or container vs scalar): local wins.
		out[key] = cloneValue(localVal)
	}
	return out
}

// Equal reports whether two trees hold the same document.
func Equal(a, b Tree) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func cloneValue(v any) any {
	if child, ok := asContainer(v); ok {
		return child.Clone()
	}
	return v
}

// normalize rewrites all containers as Tree so DeepEqual does not distinguish
// Tree from map[string]any.
func normalize(t Tree) Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		if child, ok := asContainer(v); ok {
			out[k] = normalize(child)
			continue
		}
		out[k] = v
	}
	return out
}
