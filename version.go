package caff

import (
	"fmt"
	"io"
)

// Version is a major.minor.patch triplet stored as three raw bytes.
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// NewVersion returns the version major.minor.patch.
func NewVersion(major, minor, patch uint8) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// IsEmpty reports whether all three parts are zero.
func (v Version) IsEmpty() bool {
	return v == Version{}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses a "major.minor.patch" string.
func ParseVersion(s string) (Version, error) {
	var v Version
	var rest string
	n, err := fmt.Sscanf(s, "%d.%d.%d%s", &v.Major, &v.Minor, &v.Patch, &rest)
	if n == 3 && rest == "" {
		return v, nil
	}
	if err == nil {
		err = fmt.Errorf("trailing %q", rest)
	}
	return Version{}, fmt.Errorf("parse version %q: %w", s, err)
}

// ReadVersion reads three unobfuscated bytes.
func ReadVersion(r io.Reader) (Version, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Version{}, err
	}
	return Version{Major: buf[0], Minor: buf[1], Patch: buf[2]}, nil
}

// Write writes the three parts unobfuscated.
func (v Version) Write(w io.Writer) error {
	_, err := w.Write([]byte{v.Major, v.Minor, v.Patch})
	return err
}
