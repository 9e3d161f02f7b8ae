package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/caff"
	"github.com/meigma/caff/internal/manifest"
)

func extract(ctx context.Context, file, dir string, workers int, opts []caff.Option) (int, error) {
	a, err := caff.ReadFile(file, opts...)
	if err != nil {
		return 0, err
	}
	if _, err := manifest.Extract(ctx, a, dir, workers); err != nil {
		return 0, err
	}
	return a.Body.Len(), nil
}

func pack(ctx context.Context, dir, file string, workers int, opts []caff.Option) (int, error) {
	a, err := manifest.Pack(ctx, dir, workers)
	if err != nil {
		return 0, err
	}
	if err := caff.WriteFile(file, a, opts...); err != nil {
		return 0, err
	}
	return a.Body.Len(), nil
}

// verifyResult is the outcome of re-encoding one archive.
type verifyResult struct {
	path string
	size int
	err  error

	// mismatch is the first differing offset, or -1.
	mismatch int
}

// verifyFiles decodes and re-encodes each file in memory. Failures are
// reported per file; one bad archive does not stop the others.
func verifyFiles(ctx context.Context, paths []string, workers int, opts []caff.Option) []verifyResult {
	results := make([]verifyResult, len(paths))
	var eg errgroup.Group
	eg.SetLimit(max(workers, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = verifyResult{path: path, err: err, mismatch: -1}
				return nil
			}
			results[i] = verifyFile(path, opts)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func verifyFile(path string, opts []caff.Option) verifyResult {
	res := verifyResult{path: path, mismatch: -1}
	data, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}
	res.size = len(data)

	a, err := caff.Read(bytes.NewReader(data), opts...)
	if err != nil {
		res.err = err
		return res
	}
	var buf bytes.Buffer
	if err := a.Write(&buf, opts...); err != nil {
		res.err = err
		return res
	}
	res.mismatch = firstDiff(data, buf.Bytes())
	return res
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

// writeVerify prints one line per result and fails if any archive did not
// round-trip.
func writeVerify(w io.Writer, results []verifyResult) error {
	failed := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			fmt.Fprintf(w, "FAIL      %s: %v\n", r.path, r.err)
		case r.mismatch >= 0:
			failed++
			fmt.Fprintf(w, "MISMATCH  %s: first difference at offset %d\n", r.path, r.mismatch)
		default:
			fmt.Fprintf(w, "OK        %s (%d bytes)\n", r.path, r.size)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed verification", failed, len(results))
	}
	return nil
}
