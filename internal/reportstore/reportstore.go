// Package reportstore persists finished review reports to disk as
// zstd-compressed JSON files.
package reportstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Extension is appended to report filenames.
const Extension = ".json.zst"

// Save writes v to path, compressed with zstd. Parent directories are
// created as needed.
func Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.Close()
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return f.Close()
}

// Load reads a zstd-compressed JSON report from path into v.
func Load(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening report file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating decompressor: %w", err)
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}
	return nil
}
