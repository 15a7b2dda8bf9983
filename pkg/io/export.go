package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSON encodes cities as a single JSON array and writes it to w,
// followed by a newline. A nil or empty slice encodes as [].
func WriteJSON(cities []City, w io.Writer) error {
	if cities == nil {
		cities = []City{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cities); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes cities to path, creating or replacing the file.
// Relative paths are resolved against the working directory. The directory
// must already exist.
func ExportJSON(cities []City, path string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteJSON(cities, w)
	})
}

// WriteFile writes pre-encoded output to path with the same replace
// semantics as [ExportJSON].
func WriteFile(data []byte, path string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it over path once fully written.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("rename %s: %w", abs, err)
	}
	return nil
}
