package caff

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ImageType is the pixel layout of the embedded preview image.
//
// The zero value is ImageTypeUnknown, which is also what any unrecognized
// code decodes to.
type ImageType uint8

const (
	ImageTypeUnknown ImageType = iota
	ImageTypeArgb
	ImageTypeRgb
	ImageTypeNone
)

// ImageTypeFromCode maps a stored code to its ImageType.
// Unrecognized codes map to ImageTypeUnknown.
func ImageTypeFromCode(code int8) ImageType {
	switch code {
	case 1:
		return ImageTypeArgb
	case 2:
		return ImageTypeRgb
	case 127:
		return ImageTypeNone
	default:
		return ImageTypeUnknown
	}
}

// Code returns the canonical stored code.
func (t ImageType) Code() int8 {
	switch t {
	case ImageTypeArgb:
		return 1
	case ImageTypeRgb:
		return 2
	case ImageTypeNone:
		return 127
	default:
		return 0
	}
}

func (t ImageType) String() string {
	switch t {
	case ImageTypeArgb:
		return "argb"
	case ImageTypeRgb:
		return "rgb"
	case ImageTypeNone:
		return "none"
	default:
		return "unknown"
	}
}

// ColorType is the encoding of the embedded preview image.
//
// The zero value is ColorTypeUnknown, which is also what any unrecognized
// code decodes to.
type ColorType uint8

const (
	ColorTypeUnknown ColorType = iota
	ColorTypePng
	ColorTypeNone
)

// ColorTypeFromCode maps a stored code to its ColorType.
// Unrecognized codes map to ColorTypeUnknown.
func ColorTypeFromCode(code int8) ColorType {
	switch code {
	case 1:
		return ColorTypePng
	case 127:
		return ColorTypeNone
	default:
		return ColorTypeUnknown
	}
}

// Code returns the canonical stored code.
func (t ColorType) Code() int8 {
	switch t {
	case ColorTypePng:
		return 1
	case ColorTypeNone:
		return 127
	default:
		return 0
	}
}

func (t ColorType) String() string {
	switch t {
	case ColorTypePng:
		return "png"
	case ColorTypeNone:
		return "none"
	default:
		return "unknown"
	}
}

// PreviewImageSize is the encoded size of a PreviewImage in bytes.
const PreviewImageSize = 16

// PreviewImage describes the optional preview image embedded in the header.
// Width and Height are stored as raw big-endian uint16 values.
type PreviewImage struct {
	ImageType ImageType
	ColorType ColorType
	Unknown   Padding[[2]byte]
	Width     uint16
	Height    uint16
	Trailing  Padding[[8]byte]
}

// IsEmpty reports whether the descriptor marks the preview as absent: both
// types None, zero dimensions and zeroed padding.
func (p PreviewImage) IsEmpty() bool {
	return p.ImageType == ImageTypeNone &&
		p.ColorType == ColorTypeNone &&
		p.Width == 0 && p.Height == 0 &&
		p.Unknown.IsEmpty() && p.Trailing.IsEmpty()
}

// ReadPreviewImage decodes a preview image descriptor.
func ReadPreviewImage(r io.Reader, opts ...Option) (PreviewImage, error) {
	return newCodec(opts).readPreviewImage(r)
}

// Write encodes the descriptor.
func (p PreviewImage) Write(w io.Writer, opts ...Option) error {
	return newCodec(opts).writePreviewImage(w, p)
}

func (c *codec) readPreviewImage(r io.Reader) (PreviewImage, error) {
	var p PreviewImage
	err := c.trace(r, "read", "preview_image", func() error {
		var codes [2]byte
		if _, err := io.ReadFull(r, codes[:]); err != nil {
			return fmt.Errorf("read preview_image types: %w", err)
		}
		p.ImageType = c.imageType(int8(codes[0]))
		p.ColorType = c.colorType(int8(codes[1]))

		var err error
		if p.Unknown, err = readPadding[[2]byte](c, r, "preview_image.unknown", -1); err != nil {
			return err
		}

		var dims [4]byte
		if _, err := io.ReadFull(r, dims[:]); err != nil {
			return fmt.Errorf("read preview_image dimensions: %w", err)
		}
		p.Width = binary.BigEndian.Uint16(dims[0:2])
		p.Height = binary.BigEndian.Uint16(dims[2:4])

		p.Trailing, err = readPadding[[8]byte](c, r, "preview_image.trailing", -1)
		return err
	})
	if err != nil {
		return PreviewImage{}, err
	}
	if !p.IsEmpty() {
		c.log().Debug("preview image", "image_type", p.ImageType, "color_type", p.ColorType,
			"width", p.Width, "height", p.Height)
	}
	return p, nil
}

func (c *codec) imageType(code int8) ImageType {
	t := ImageTypeFromCode(code)
	if t == ImageTypeUnknown && code != 0 {
		c.unknownCode("preview_image.image_type", code)
	}
	return t
}

func (c *codec) colorType(code int8) ColorType {
	t := ColorTypeFromCode(code)
	if t == ColorTypeUnknown && code != 0 {
		c.unknownCode("preview_image.color_type", code)
	}
	return t
}

func (c *codec) unknownCode(region string, code int8) {
	c.log().Debug("unrecognized code", "region", region, "code", code)
	c.emit(Event{Kind: EventUnknownCode, Region: region, Index: -1, Code: code})
}

func (c *codec) writePreviewImage(w io.Writer, p PreviewImage) error {
	return c.trace(w, "write", "preview_image", func() error {
		head := []byte{byte(p.ImageType.Code()), byte(p.ColorType.Code())}
		if _, err := w.Write(head); err != nil {
			return fmt.Errorf("write preview_image types: %w", err)
		}
		if err := writePadding(c, w, "preview_image.unknown", p.Unknown); err != nil {
			return err
		}
		var dims [4]byte
		binary.BigEndian.PutUint16(dims[0:2], p.Width)
		binary.BigEndian.PutUint16(dims[2:4], p.Height)
		if _, err := w.Write(dims[:]); err != nil {
			return fmt.Errorf("write preview_image dimensions: %w", err)
		}
		return writePadding(c, w, "preview_image.trailing", p.Trailing)
	})
}
