// Package manifest describes a CAFF archive as a TOML document plus a tree of
// payload files, so that an extracted archive can be packed back into the
// exact same bytes.
//
// Opaque regions are stored as hex strings; an empty string stands for an
// all-zero region.
package manifest

import (
	"context"
	_ "crypto/sha256" // digest.Canonical
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/caff"
)

// FileName is the manifest's name inside an extracted directory.
const FileName = "caff.toml"

var (
	// ErrInvalidField is returned when a manifest field cannot be decoded.
	ErrInvalidField = errors.New("manifest: invalid field")

	// ErrInvalidPath is returned when an entry path is not a valid
	// slash-separated relative path.
	ErrInvalidPath = errors.New("manifest: invalid payload path")

	// ErrDigestMismatch is returned when a payload no longer matches the
	// digest recorded at extraction.
	ErrDigestMismatch = errors.New("manifest: payload digest mismatch")
)

// Manifest is the TOML form of an archive.
type Manifest struct {
	Header   Header  `toml:"header"`
	Entries  []Entry `toml:"entry"`
	Trailing string  `toml:"trailing,omitempty"`
}

// Header mirrors caff.Header.
type Header struct {
	Magic            string  `toml:"magic"`
	ArchiveVersion   string  `toml:"archive_version"`
	FormatIdentifier string  `toml:"format_identifier"`
	FormatVersion    string  `toml:"format_version"`
	Key              uint32  `toml:"key"`
	Unknown          string  `toml:"unknown,omitempty"`
	Preview          Preview `toml:"preview"`
	Trailing         string  `toml:"trailing,omitempty"`
}

// Preview mirrors caff.PreviewImage. Types are stored as their codes.
type Preview struct {
	ImageType int8   `toml:"image_type"`
	ColorType int8   `toml:"color_type"`
	Unknown   string `toml:"unknown,omitempty"`
	Width     uint16 `toml:"width"`
	Height    uint16 `toml:"height"`
	Trailing  string `toml:"trailing,omitempty"`
}

// Entry mirrors caff.Metadata. The payload lives at Path, relative to the
// manifest; FileSize is taken from the payload when packing.
type Entry struct {
	FileName     string        `toml:"file_name"`
	Tag          string        `toml:"tag,omitempty"`
	Path         string        `toml:"path"`
	Digest       digest.Digest `toml:"digest,omitempty"`
	IsObfuscated bool          `toml:"is_obfuscated"`
	Compression  uint8         `toml:"compression"`
	Unknown1     string        `toml:"unknown_1,omitempty"`
	Unknown2     string        `toml:"unknown_2,omitempty"`
	Trailing     string        `toml:"trailing,omitempty"`
}

// Decode reads a manifest. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidField, undecoded[0].String())
	}
	return &m, nil
}

// Encode writes m as TOML.
func (m *Manifest) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// FromArchive describes a. Payload paths are assigned by PayloadPaths and
// every entry records the digest of its payload.
func FromArchive(a *caff.Archive) *Manifest {
	h := &a.Header
	m := &Manifest{
		Header: Header{
			Magic:            hex.EncodeToString(h.Magic[:]),
			ArchiveVersion:   h.ArchiveVersion.String(),
			FormatIdentifier: hex.EncodeToString(h.FormatIdentifier[:]),
			FormatVersion:    h.FormatVersion.String(),
			Key:              uint32(h.Key),
			Unknown:          encodePadding(h.Unknown),
			Preview: Preview{
				ImageType: h.PreviewImage.ImageType.Code(),
				ColorType: h.PreviewImage.ColorType.Code(),
				Unknown:   encodePadding(h.PreviewImage.Unknown),
				Width:     h.PreviewImage.Width,
				Height:    h.PreviewImage.Height,
				Trailing:  encodePadding(h.PreviewImage.Trailing),
			},
			Trailing: encodePadding(h.Trailing),
		},
		Trailing: hex.EncodeToString(a.Body.Trailing),
	}

	paths := PayloadPaths(a.Body.Metadata)
	for i, e := range a.Body.Entries() {
		md := e.Metadata
		m.Entries = append(m.Entries, Entry{
			FileName:     md.FileName,
			Tag:          md.Tag,
			Path:         paths[i],
			Digest:       digest.FromBytes(e.Data),
			IsObfuscated: md.IsObfuscated,
			Compression:  md.Compression,
			Unknown1:     encodePadding(md.Unknown1),
			Unknown2:     encodePadding(md.Unknown2),
			Trailing:     encodePadding(md.Trailing),
		})
	}
	return m
}

// Archive rebuilds the archive, loading each payload from fsys at its
// entry's Path. Up to workers payloads are loaded concurrently; workers < 1
// means one at a time.
func (m *Manifest) Archive(ctx context.Context, fsys fs.FS, workers int) (*caff.Archive, error) {
	h, err := m.Header.decode()
	if err != nil {
		return nil, err
	}
	a := &caff.Archive{Header: h}

	meta := make([]caff.Metadata, len(m.Entries))
	for i := range m.Entries {
		if meta[i], err = m.Entries[i].metadata(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	data := make([][]byte, len(m.Entries))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for i := range m.Entries {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := m.Entries[i].load(fsys)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			data[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i := range meta {
		if err := a.Body.Add(meta[i], data[i]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	if a.Body.Trailing, err = decodeHex("trailing", m.Trailing); err != nil {
		return nil, err
	}
	if len(a.Body.Trailing) == 0 {
		a.Body.Trailing = nil
	}
	return a, nil
}

func (h *Header) decode() (caff.Header, error) {
	var out caff.Header
	var err error

	if err = decodeArray("header.magic", h.Magic, out.Magic[:]); err != nil {
		return out, err
	}
	if out.ArchiveVersion, err = caff.ParseVersion(h.ArchiveVersion); err != nil {
		return out, fmt.Errorf("%w: header.archive_version: %w", ErrInvalidField, err)
	}
	if err = decodeArray("header.format_identifier", h.FormatIdentifier, out.FormatIdentifier[:]); err != nil {
		return out, err
	}
	if out.FormatVersion, err = caff.ParseVersion(h.FormatVersion); err != nil {
		return out, fmt.Errorf("%w: header.format_version: %w", ErrInvalidField, err)
	}
	out.Key = caff.Key(h.Key)
	if out.Unknown, err = decodePadding[[8]byte]("header.unknown", h.Unknown); err != nil {
		return out, err
	}

	p := &out.PreviewImage
	p.ImageType = caff.ImageTypeFromCode(h.Preview.ImageType)
	p.ColorType = caff.ColorTypeFromCode(h.Preview.ColorType)
	if p.Unknown, err = decodePadding[[2]byte]("header.preview.unknown", h.Preview.Unknown); err != nil {
		return out, err
	}
	p.Width = h.Preview.Width
	p.Height = h.Preview.Height
	if p.Trailing, err = decodePadding[[8]byte]("header.preview.trailing", h.Preview.Trailing); err != nil {
		return out, err
	}

	out.Trailing, err = decodePadding[[12]byte]("header.trailing", h.Trailing)
	return out, err
}

func (e *Entry) metadata() (caff.Metadata, error) {
	md := caff.Metadata{
		FileName:     e.FileName,
		Tag:          e.Tag,
		IsObfuscated: e.IsObfuscated,
		Compression:  e.Compression,
	}
	var err error
	if md.Unknown1, err = decodePadding[[4]byte]("unknown_1", e.Unknown1); err != nil {
		return md, err
	}
	if md.Unknown2, err = decodePadding[[4]byte]("unknown_2", e.Unknown2); err != nil {
		return md, err
	}
	md.Trailing, err = decodePadding[[8]byte]("trailing", e.Trailing)
	return md, err
}

// load reads the payload and checks it against the recorded digest, if any.
func (e *Entry) load(fsys fs.FS) ([]byte, error) {
	if !fs.ValidPath(e.Path) || e.Path == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, e.Path)
	}
	data, err := fs.ReadFile(fsys, e.Path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if e.Digest == "" {
		return data, nil
	}
	if err := e.Digest.Validate(); err != nil {
		return nil, fmt.Errorf("%w: digest: %w", ErrInvalidField, err)
	}
	if got := e.Digest.Algorithm().FromBytes(data); got != e.Digest {
		return nil, fmt.Errorf("%w: %s: have %s, want %s", ErrDigestMismatch, e.Path, got, e.Digest)
	}
	return data, nil
}

func encodePadding[A caff.PaddingArray](p caff.Padding[A]) string {
	if p.IsEmpty() {
		return ""
	}
	return hex.EncodeToString(p.Bytes())
}

func decodePadding[A caff.PaddingArray](field, s string) (caff.Padding[A], error) {
	var p caff.Padding[A]
	if s == "" {
		return p, nil
	}
	raw, err := decodeHex(field, s)
	if err != nil {
		return p, err
	}
	p, err = caff.PaddingFromBytes[A](raw)
	if err != nil {
		return p, fmt.Errorf("%w: %s: %w", ErrInvalidField, field, err)
	}
	return p, nil
}

func decodeArray(field, s string, dst []byte) error {
	raw, err := decodeHex(field, s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("%w: %s: want %d bytes, got %d", ErrInvalidField, field, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func decodeHex(field, s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidField, field, err)
	}
	return raw, nil
}
