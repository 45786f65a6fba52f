// Package prefs models user preference documents as typed recursive trees
// and defines the deep-merge used to reconcile the local copy with the
// remote one. The merge is local-biased: on a key conflict the local value
// wins, and no field is ever dropped from either side absent a conflict.
package prefs
