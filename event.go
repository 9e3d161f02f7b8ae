package caff

// EventKind identifies a diagnostic event raised while decoding.
type EventKind uint8

// Diagnostic events.
const (
	// EventHeader is raised after the header has been decoded.
	EventHeader EventKind = iota

	// EventMetadata is raised after each entry metadata record.
	EventMetadata

	// EventPadding is raised for every opaque region that is not all zero.
	EventPadding

	// EventUnknownCode is raised when an enumeration code is not recognized
	// and decodes to its Unknown variant.
	EventUnknownCode

	// EventBadMagic is raised when the header signature is not "CAFF".
	EventBadMagic
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventHeader:
		return "header"
	case EventMetadata:
		return "metadata"
	case EventPadding:
		return "padding"
	case EventUnknownCode:
		return "unknown code"
	case EventBadMagic:
		return "bad magic"
	default:
		return "unknown"
	}
}

// Event describes something worth a closer look in a decoded archive.
type Event struct {
	// Kind identifies the event.
	Kind EventKind

	// Region names the field the event refers to, e.g. "header.unknown"
	// or "metadata.unknown_1".
	Region string

	// Index is the entry index for metadata events, -1 otherwise.
	Index int

	// Class is the classification of an opaque region (EventPadding only).
	Class PaddingClass

	// Bytes holds the raw bytes of an opaque region or bad signature.
	Bytes []byte

	// Code is the unrecognized enumeration code (EventUnknownCode only).
	Code int8

	// Header is set for EventHeader.
	Header *Header

	// Metadata is set for EventMetadata.
	Metadata *Metadata
}

// Observer receives diagnostic events while decoding.
// Events are delivered synchronously, in stream order.
type Observer func(Event)
