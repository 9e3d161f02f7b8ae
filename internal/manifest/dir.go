package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/caff"
)

// ErrExists is returned by Extract when the manifest or a payload file
// already exists in the target directory.
var ErrExists = errors.New("manifest: already exists")

// Extract writes every payload of a, unmasked, below dir and then the
// manifest at dir/caff.toml. Up to workers payloads are written
// concurrently.
//
// Existing files are never overwritten: if the manifest or any payload path
// already exists, Extract fails with ErrExists and removes whatever it
// created.
func Extract(ctx context.Context, a *caff.Archive, dir string, workers int) (*Manifest, error) {
	if err := a.Body.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	manifestPath := filepath.Join(dir, FileName)
	f, err := createExclusive(manifestPath)
	if err != nil {
		return nil, err
	}
	created := []string{manifestPath}
	var mu sync.Mutex
	fail := func(err error) (*Manifest, error) {
		f.Close()
		for _, p := range created {
			os.Remove(p)
		}
		return nil, err
	}

	m := FromArchive(a)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for i, data := range a.Body.Data {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.FromSlash(m.Entries[i].Path))
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return err
			}
			pf, err := createExclusive(path)
			if err != nil {
				return err
			}
			mu.Lock()
			created = append(created, path)
			mu.Unlock()
			_, err = pf.Write(data)
			if closeErr := pf.Close(); err == nil {
				err = closeErr
			}
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return fail(fmt.Errorf("extract payloads: %w", err))
	}

	if err := m.Encode(f); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(fmt.Errorf("close manifest: %w", err))
	}
	return m, nil
}

// Pack reads dir/caff.toml and the payloads it references and rebuilds the
// archive. Payload paths are resolved inside dir only.
func Pack(ctx context.Context, dir string, workers int) (*caff.Archive, error) {
	fsys := os.DirFS(dir)
	f, err := fsys.Open(FileName)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return m.Archive(ctx, fsys, workers)
}

func createExclusive(path string) (*os.File, error) {
	//nolint:gosec // extracted payloads are regular user files
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	return f, err
}
