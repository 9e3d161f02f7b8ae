package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/caff"
)

// report is the printable form of one inspected archive.
type report struct {
	Path           string        `json:"path"`
	Magic          string        `json:"magic"`
	MagicValid     bool          `json:"magic_valid"`
	ArchiveVersion string        `json:"archive_version"`
	FormatID       string        `json:"format_identifier"`
	FormatVersion  string        `json:"format_version"`
	Key            uint32        `json:"key"`
	Preview        *previewInfo  `json:"preview,omitempty"`
	Regions        []regionInfo  `json:"regions"`
	Entries        []entryReport `json:"entries"`
	TotalSize      uint64        `json:"total_size"`
	TrailingSize   int           `json:"trailing_size"`
	Suspicious     []regionInfo  `json:"suspicious,omitempty"`
}

type previewInfo struct {
	ImageType string `json:"image_type"`
	ColorType string `json:"color_type"`
	Width     uint16 `json:"width"`
	Height    uint16 `json:"height"`
}

type regionInfo struct {
	Region string `json:"region"`
	Class  string `json:"class"`
	Hex    string `json:"hex,omitempty"`
}

type entryReport struct {
	Index        int          `json:"index"`
	FileName     string       `json:"file_name"`
	Tag          string       `json:"tag,omitempty"`
	FileSize     uint32       `json:"file_size"`
	IsObfuscated bool         `json:"is_obfuscated"`
	Compression  uint8        `json:"compression"`
	Digest       string       `json:"digest"`
	Regions      []regionInfo `json:"regions"`
}

// inspectFiles decodes paths concurrently and returns reports in argument
// order. The first decode failure cancels the rest.
func inspectFiles(ctx context.Context, paths []string, workers int, opts []caff.Option) ([]report, error) {
	reports := make([]report, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := caff.ReadFile(path, opts...)
			if err != nil {
				return err
			}
			reports[i] = newReport(path, caff.Inspect(a))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newReport(path string, r *caff.InspectResult) report {
	h := &r.Archive().Header
	rep := report{
		Path:           path,
		Magic:          string(h.Magic[:]),
		MagicValid:     r.MagicValid(),
		ArchiveVersion: h.ArchiveVersion.String(),
		FormatID:       hex.EncodeToString(h.FormatIdentifier[:]),
		FormatVersion:  h.FormatVersion.String(),
		Key:            uint32(h.Key),
		Regions:        regions(r.HeaderRegions()),
		Entries:        []entryReport{},
		TotalSize:      r.TotalSize(),
		TrailingSize:   r.TrailingSize(),
		Suspicious:     regions(r.Suspicious()),
	}
	if r.HasPreview() {
		p := h.PreviewImage
		rep.Preview = &previewInfo{
			ImageType: p.ImageType.String(),
			ColorType: p.ColorType.String(),
			Width:     p.Width,
			Height:    p.Height,
		}
	}
	for _, e := range r.Entries() {
		rep.Entries = append(rep.Entries, entryReport{
			Index:        e.Index,
			FileName:     e.FileName,
			Tag:          e.Tag,
			FileSize:     e.FileSize,
			IsObfuscated: e.IsObfuscated,
			Compression:  e.Compression,
			Digest:       e.Digest.String(),
			Regions:      regions(e.Regions),
		})
	}
	return rep
}

func regions(in []caff.RegionInfo) []regionInfo {
	out := make([]regionInfo, 0, len(in))
	for _, ri := range in {
		info := regionInfo{Region: ri.Region, Class: ri.Class.String()}
		if ri.Class != caff.PaddingEmpty {
			info.Hex = hex.EncodeToString(ri.Bytes)
		}
		out = append(out, info)
	}
	return out
}

func writeJSON(w io.Writer, reports []report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func writeText(w io.Writer, r *report) error {
	magic := "valid"
	if !r.MagicValid {
		magic = "INVALID"
	}
	fmt.Fprintf(w, "%s\n", r.Path)
	fmt.Fprintf(w, "  Magic:            %q (%s)\n", r.Magic, magic)
	fmt.Fprintf(w, "  Archive version:  %s\n", r.ArchiveVersion)
	fmt.Fprintf(w, "  Format:           %s %s\n", r.FormatID, r.FormatVersion)
	fmt.Fprintf(w, "  Key:              0x%08x\n", r.Key)
	if r.Preview != nil {
		fmt.Fprintf(w, "  Preview:          %s/%s %dx%d\n",
			r.Preview.ImageType, r.Preview.ColorType, r.Preview.Width, r.Preview.Height)
	} else {
		fmt.Fprintf(w, "  Preview:          none\n")
	}
	fmt.Fprintf(w, "  Entries:          %d (%d bytes)\n", len(r.Entries), r.TotalSize)
	fmt.Fprintf(w, "  Trailing bytes:   %d\n", r.TrailingSize)

	if len(r.Entries) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tNAME\tTAG\tSIZE\tOBF\tCOMP\tDIGEST")
		for _, e := range r.Entries {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%t\t%d\t%s\n",
				e.Index, e.FileName, e.Tag, e.FileSize, e.IsObfuscated, e.Compression, e.Digest)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Suspicious) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Non-trivial opaque regions:")
		for _, ri := range r.Suspicious {
			fmt.Fprintf(w, "    %-28s %s\n", ri.Region, ri.Hex)
		}
	}
	return nil
}
