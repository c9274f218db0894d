// Package store persists client collections as JSON array files and runs the
// fire-and-forget background writer.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a JSON array file into items. A missing, empty or corrupt file
// yields an empty collection: local state must never block startup.
func Load[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// Save writes items as an indented, sorted-key JSON array, atomically via a
// temp file rename.
func Save[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	// Round-trip through the generic representation so object keys come out
	// sorted regardless of struct field order.
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("normalizing %s: %w", filepath.Base(path), err)
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
