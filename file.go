// The savfile package models the contents of a factory game save file.
//
// A save file consists of a Header, followed by a compressed body. Once
// decompressed, the body is a table of object headers, a parallel table of
// object bodies, and a trailing table of object references. The property data
// within each object is not interpreted; it is kept as raw bytes so that a
// file can be decoded, edited, and encoded again without losing information.
//
// The types in this package carry no knowledge of the binary format. The "sav"
// sub-package decodes and encodes them from and to byte streams.
package savfile

import (
	"bytes"
	"fmt"
	"time"
)

// MaxStringLen is the largest number of bytes a String may occupy in a file.
const MaxStringLen = 1 << 20

////////////////////////////////////////////////////////////////

// String is a length-prefixed text value as it appears in a save file.
//
// In a file, a String is a signed 32-bit length followed by that many bytes,
// the last of which is a NUL. A negative length indicates that the bytes are
// not plain single-byte text; the magnitude is the byte count in either case.
type String struct {
	// Size is the length field exactly as it was decoded. The sign is
	// retained, but the encoder always writes a positive length of
	// len(Value)+1.
	Size int32

	// Raw holds the stored bytes, including the trailing NUL. It is nil for
	// strings that were not decoded.
	Raw []byte

	// Value is the text of the string, up to the first NUL.
	Value string
}

// NewString returns a plain String holding s, sized as it would be encoded.
func NewString(s string) String {
	raw := make([]byte, len(s)+1)
	copy(raw, s)
	return String{
		Size:  int32(len(raw)),
		Raw:   raw,
		Value: s,
	}
}

// StringFromBytes returns a String decoded from the raw stored bytes of a
// string with the given length field. Value is cut at the first NUL.
func StringFromBytes(size int32, raw []byte) String {
	text := raw
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		text = raw[:i]
	}
	return String{Size: size, Raw: raw, Value: string(text)}
}

// Wide returns whether the length field was negative, which marks content
// that is not plain single-byte text.
func (s String) Wide() bool {
	return s.Size < 0
}

// Len returns the magnitude of the decoded length field.
func (s String) Len() int {
	if s.Size < 0 {
		return -int(s.Size)
	}
	return int(s.Size)
}

// EncodedLen returns the number of bytes the string occupies when encoded,
// including the length field and the trailing NUL.
func (s String) EncodedLen() int {
	return 4 + len(s.Value) + 1
}

func (s String) String() string {
	return s.Value
}

////////////////////////////////////////////////////////////////

// Visibility indicates who may join a session.
type Visibility int8

const (
	VisibilityPrivate     Visibility = 0
	VisibilityFriendsOnly Visibility = 1
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "Private"
	case VisibilityFriendsOnly:
		return "FriendsOnly"
	}
	return fmt.Sprintf("Visibility(%d)", int8(v))
}

// CompressedBodyVersion is the first save version whose body is stored as
// compressed chunks.
const CompressedBodyVersion = 21

// ticksPerSecond is the resolution of SaveTimestamp.
const ticksPerSecond = int64(time.Second / 100)

// unixEpochTicks is the SaveTimestamp value of 1970-01-01T00:00:00Z.
const unixEpochTicks = 621355968000000000

// Header is the metadata at the start of a save file.
type Header struct {
	SaveHeaderVersion int32
	SaveVersion       int32
	BuildVersion      int32

	MapName     String
	MapOptions  String
	SessionName String

	// PlayedSeconds is the total play time of the session.
	PlayedSeconds int32

	// SaveTimestamp is the time of the save, in 100 nanosecond ticks since
	// 0001-01-01T00:00:00Z.
	SaveTimestamp int64

	SessionVisibility   Visibility
	EditorObjectVersion int32
	ModMetadata         String
	ModFlags            int32
}

// Size returns the number of bytes the header occupies when encoded.
func (h *Header) Size() int64 {
	const (
		byteSize = 1
		intSize  = 4
		longSize = 8
	)
	size := int64(1*byteSize + 6*intSize + 1*longSize)
	for _, s := range [...]String{h.MapName, h.MapOptions, h.SessionName, h.ModMetadata} {
		size += int64(s.EncodedLen())
	}
	return size
}

// HasCompressedBody returns whether the body that follows the header is
// stored as compressed chunks.
func (h *Header) HasCompressedBody() bool {
	return h.SaveVersion >= CompressedBodyVersion
}

// Timestamp returns SaveTimestamp as a time in UTC.
func (h *Header) Timestamp() time.Time {
	t := h.SaveTimestamp - unixEpochTicks
	return time.Unix(t/ticksPerSecond, t%ticksPerSecond*100).UTC()
}

// SetTimestamp sets SaveTimestamp from t.
func (h *Header) SetTimestamp(t time.Time) {
	h.SaveTimestamp = t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100 + unixEpochTicks
}

// PlayTime returns PlayedSeconds as a duration.
func (h *Header) PlayTime() time.Duration {
	return time.Duration(h.PlayedSeconds) * time.Second
}
