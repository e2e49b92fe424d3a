package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
)

// printJSON marshals v to stdout, optionally piping it through a jq query
// first. The query runs over the generic JSON form of v, so field names
// match the wire tags.
func printJSON(v any, query string) error {
	if query == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("failed to parse jq query %q: %w", query, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("failed to compile jq query %q: %w", query, err)
	}

	// Round-trip through encoding/json to get the generic form gojq expects.
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to generalize output: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	iter := code.Run(generic)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return fmt.Errorf("jq query failed: %w", err)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
