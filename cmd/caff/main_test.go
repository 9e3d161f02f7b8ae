package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/caff"
)

func writeArchive(t *testing.T, dir, name string, a *caff.Archive) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, caff.WriteFile(path, a))
	return path
}

func sampleArchive(t *testing.T) *caff.Archive {
	t.Helper()
	pad, err := caff.PaddingFromBytes[[4]byte]([]byte{0, 0, 0, 9})
	require.NoError(t, err)

	a := &caff.Archive{Header: caff.Header{
		Magic:          caff.DefaultMagic,
		ArchiveVersion: caff.NewVersion(1, 2, 3),
		Key:            0xDEADBEEF,
	}}
	require.NoError(t, a.Body.Add(caff.Metadata{FileName: "a.txt", IsObfuscated: true}, []byte{0x10, 0x20, 0x30}))
	require.NoError(t, a.Body.Add(caff.Metadata{FileName: "b.bin", Tag: "raw", Unknown2: pad}, []byte("plain")))
	a.Body.Trailing = []byte{1, 2, 3}
	return a
}

func TestInspectFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p1 := writeArchive(t, dir, "one.caff", sampleArchive(t))
	p2 := writeArchive(t, dir, "two.caff", &caff.Archive{Header: caff.Header{Magic: caff.DefaultMagic}})

	reports, err := inspectFiles(context.Background(), []string{p1, p2}, 2, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	r := reports[0]
	assert.Equal(t, p1, r.Path)
	assert.True(t, r.MagicValid)
	assert.Equal(t, "1.2.3", r.ArchiveVersion)
	assert.Equal(t, uint32(0xDEADBEEF), r.Key)
	assert.Equal(t, uint64(8), r.TotalSize)
	assert.Equal(t, 3, r.TrailingSize)
	require.Len(t, r.Entries, 2)
	assert.Equal(t, "b.bin", r.Entries[1].FileName)
	require.Len(t, r.Suspicious, 1)
	assert.Equal(t, "entry[1].unknown_2", r.Suspicious[0].Region)
	assert.Equal(t, "00000009", r.Suspicious[0].Hex)

	assert.Empty(t, reports[1].Entries)

	var text bytes.Buffer
	require.NoError(t, writeText(&text, &r))
	assert.Contains(t, text.String(), "Key:              0xdeadbeef")

	text.Reset()
	small := report{Key: 0x42}
	require.NoError(t, writeText(&text, &small))
	assert.Contains(t, text.String(), "Key:              0x00000042\n")
	assert.Contains(t, text.String(), "Entries:          2 (8 bytes)")
	assert.Contains(t, text.String(), "entry[1].unknown_2")

	var js bytes.Buffer
	require.NoError(t, writeJSON(&js, reports))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1.2.3", decoded[0]["archive_version"])
}

func TestInspectFiles_Error(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.caff")
	require.NoError(t, os.WriteFile(bad, bytes.Repeat([]byte{'X'}, caff.HeaderSize+4), 0o600))

	_, err := inspectFiles(context.Background(), []string{bad}, 1, nil)
	require.ErrorIs(t, err, caff.ErrBadMagic)

	reports, err := inspectFiles(context.Background(), []string{bad}, 1,
		[]caff.Option{caff.WithMagicCheck(caff.MagicCheckLenient)})
	require.NoError(t, err)
	assert.False(t, reports[0].MagicValid)
}

func TestExtractPack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeArchive(t, dir, "in.caff", sampleArchive(t))
	out := filepath.Join(dir, "extracted")

	n, err := extract(context.Background(), src, out, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	payload, err := os.ReadFile(filepath.Join(out, "files", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x20, 0x30}, payload)

	dst := filepath.Join(dir, "out.caff")
	n, err = pack(context.Background(), out, dst, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeArchive(t, dir, "good.caff", sampleArchive(t))

	// A non-canonical image type code decodes to Unknown and re-encodes as 0.
	raw, err := os.ReadFile(good)
	require.NoError(t, err)
	raw[26] = 0x05
	drift := filepath.Join(dir, "drift.caff")
	require.NoError(t, os.WriteFile(drift, raw, 0o600))

	missing := filepath.Join(dir, "missing.caff")

	results := verifyFiles(context.Background(), []string{good, drift, missing}, 3, nil)
	require.Len(t, results, 3)
	require.NoError(t, results[0].err)
	assert.Equal(t, -1, results[0].mismatch)
	require.NoError(t, results[1].err)
	assert.Equal(t, 26, results[1].mismatch)
	require.ErrorIs(t, results[2].err, os.ErrNotExist)

	var out bytes.Buffer
	err = writeVerify(&out, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")
	assert.Contains(t, out.String(), "OK        "+good)
	assert.Contains(t, out.String(), "MISMATCH  "+drift+": first difference at offset 26")

	out.Reset()
	require.NoError(t, writeVerify(&out, results[:1]))
}

func TestFirstDiff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, firstDiff([]byte{1, 2}, []byte{1, 2}))
	assert.Equal(t, 1, firstDiff([]byte{1, 2}, []byte{1, 3}))
	assert.Equal(t, 2, firstDiff([]byte{1, 2}, []byte{1, 2, 3}))
	assert.Equal(t, -1, firstDiff(nil, nil))
}

// TestRootCmd drives the cobra commands end to end. It mutates the global
// command tree, so it does not run in parallel.
func TestRootCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "caff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level = \"error\"\nworkers = 2\n"), 0o600))
	src := writeArchive(t, dir, "in.caff", sampleArchive(t))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	out, err := run("inspect", src)
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")

	out, err = run("verify", src)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	extracted := filepath.Join(dir, "x")
	out, err = run("extract", src, extracted)
	require.NoError(t, err)
	assert.Contains(t, out, "Extracted 2 entries")

	packed := filepath.Join(dir, "packed.caff")
	out, err = run("pack", extracted, packed)
	require.NoError(t, err)
	assert.Contains(t, out, "Packed 2 entries")

	_, err = run("inspect")
	require.Error(t, err)
}

func TestNewApp_Overrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "caff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level = \"error\"\n"), 0o600))

	cmd := verifyCmd
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--lenient-magic", "--workers", "3"}))
	t.Cleanup(func() {
		_ = cmd.Flags().Set("lenient-magic", "false")
		_ = cmd.Flags().Set("workers", "0")
	})

	a, err := newApp(cmd)
	require.NoError(t, err)
	assert.True(t, a.cfg.LenientMagic)
	assert.Equal(t, 3, a.cfg.WorkerCount())
	assert.Len(t, a.options(), 3)
}
