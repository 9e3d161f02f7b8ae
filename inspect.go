package caff

import (
	_ "crypto/sha256" // digest.Canonical
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"
)

// InspectResult summarizes a decoded archive for diagnostics.
//
// It reports header fields, how each opaque region is classified and a
// content digest per entry. Nothing here interprets unknown fields.
type InspectResult struct {
	archive *Archive

	entriesOnce sync.Once
	entries     []EntryInfo
	totalSize   uint64
}

// RegionInfo describes one opaque region.
type RegionInfo struct {
	Region string
	Class  PaddingClass
	Bytes  []byte
}

// EntryInfo describes one entry.
type EntryInfo struct {
	Index        int
	FileName     string
	Tag          string
	FileSize     uint32
	IsObfuscated bool
	Compression  uint8
	Digest       digest.Digest
	Regions      []RegionInfo
}

// Inspect builds an InspectResult for a.
func Inspect(a *Archive) *InspectResult {
	return &InspectResult{archive: a}
}

// Archive returns the inspected archive.
func (r *InspectResult) Archive() *Archive {
	return r.archive
}

// MagicValid reports whether the header signature is "CAFF".
func (r *InspectResult) MagicValid() bool {
	return r.archive.Header.Magic.IsValid()
}

// FileCount returns the number of entries.
func (r *InspectResult) FileCount() int {
	return r.archive.Body.Len()
}

// TrailingSize returns the number of bytes after the last payload.
func (r *InspectResult) TrailingSize() int {
	return len(r.archive.Body.Trailing)
}

// HasPreview reports whether the header carries a preview image descriptor.
func (r *InspectResult) HasPreview() bool {
	return !r.archive.Header.PreviewImage.IsEmpty()
}

// HeaderRegions classifies the header's opaque regions.
func (r *InspectResult) HeaderRegions() []RegionInfo {
	h := &r.archive.Header
	return []RegionInfo{
		regionInfo("header.unknown", h.Unknown),
		regionInfo("preview_image.unknown", h.PreviewImage.Unknown),
		regionInfo("preview_image.trailing", h.PreviewImage.Trailing),
		regionInfo("header.trailing", h.Trailing),
	}
}

// Entries returns per-entry information in archive order.
// Digests are computed on first call; the result is cached.
func (r *InspectResult) Entries() []EntryInfo {
	r.computeEntries()
	return r.entries
}

// TotalSize returns the sum of all payload sizes.
func (r *InspectResult) TotalSize() uint64 {
	r.computeEntries()
	return r.totalSize
}

// Suspicious returns the opaque regions that are neither all zero nor all
// 0xFF, across the header and every entry.
func (r *InspectResult) Suspicious() []RegionInfo {
	var out []RegionInfo
	for _, ri := range r.HeaderRegions() {
		if ri.Class == PaddingOther {
			out = append(out, ri)
		}
	}
	for _, e := range r.Entries() {
		for _, ri := range e.Regions {
			if ri.Class == PaddingOther {
				ri.Region = fmt.Sprintf("entry[%d].%s", e.Index, ri.Region)
				out = append(out, ri)
			}
		}
	}
	return out
}

func (r *InspectResult) computeEntries() {
	r.entriesOnce.Do(func() {
		for i, e := range r.archive.Body.Entries() {
			m := e.Metadata
			r.entries = append(r.entries, EntryInfo{
				Index:        i,
				FileName:     m.FileName,
				Tag:          m.Tag,
				FileSize:     m.FileSize,
				IsObfuscated: m.IsObfuscated,
				Compression:  m.Compression,
				Digest:       digest.FromBytes(e.Data),
				Regions: []RegionInfo{
					regionInfo("unknown_1", m.Unknown1),
					regionInfo("unknown_2", m.Unknown2),
					regionInfo("trailing", m.Trailing),
				},
			})
			r.totalSize += uint64(m.FileSize)
		}
	})
}

func regionInfo[A PaddingArray](name string, p Padding[A]) RegionInfo {
	return RegionInfo{Region: name, Class: p.Class(), Bytes: p.Bytes()}
}
