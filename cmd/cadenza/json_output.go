package main

import (
	"encoding/json"
	"io"
)

// printJSON writes v to w as indented JSON, for the --json flag every
// query command carries.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
