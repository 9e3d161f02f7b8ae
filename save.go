package caff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile decodes the archive stored at path.
//
// The file is read into memory and decoded from a seekable reader, so debug
// traces carry file offsets.
func ReadFile(path string, opts ...Option) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}
	a, err := Read(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// WriteFile encodes a and writes it to path.
//
// The archive is encoded in memory first, then written to a temp file in
// the target directory and renamed over path, so neither an encode failure
// nor a write failure leaves a partial archive at path. Parent directories
// are created as needed.
func WriteFile(path string, a *Archive, opts ...Option) error {
	var buf bytes.Buffer
	if err := a.Write(&buf, opts...); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("caff: create archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".caff-*")
	if err != nil {
		return fmt.Errorf("caff: create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	_, err = tmp.Write(buf.Bytes())
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("caff: write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("caff: replace %s: %w", path, err)
	}
	return nil
}
