package sav

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// Indicates that fewer bytes were available than a field requires.
	ErrTruncated = errors.New("truncated input")
	// Indicates a string whose declared length exceeds MaxStringLen.
	ErrStringTooLarge = errors.New("string too large")
	// Indicates that a chunk does not begin with the chunk signature.
	ErrBadChunkMagic = errors.New("bad chunk magic")
	// Indicates that a chunk declares an uncompressed size above the
	// decoder's limit.
	ErrChunkTooLarge = errors.New("chunk too large")
	// Indicates an object header tag that is neither a component nor an
	// actor.
	ErrUnknownKind = errors.New("unknown object kind")
	// Indicates that the object count of a body differs from its header
	// count.
	ErrCountMismatch = errors.New("object count does not match header count")
	// Indicates an attempt to encode a body that holds headers only.
	ErrPartialBody = errors.New("body is partial")
	// Indicates a file whose body is not stored as compressed chunks.
	ErrUncompressedBody = errors.New("body is not compressed")
	// Indicates that the size field of a body disagrees with its length.
	ErrBodySize = errors.New("body size field does not match body length")
	// Indicates bytes following the reference table of a body. These bytes
	// are not retained.
	ErrTrailingData = errors.New("trailing data after reference table")
	// Indicates an object whose declared size cannot hold its fields.
	ErrObjectSize = errors.New("invalid object size")
)

// truncated converts a short read reported by an io.Reader into ErrTruncated,
// retaining the original error.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncatedError{Cause: err}
	}
	return err
}

type truncatedError struct {
	Cause error
}

func (err truncatedError) Error() string {
	return ErrTruncated.Error()
}

func (err truncatedError) Is(target error) bool {
	return target == ErrTruncated
}

func (err truncatedError) Unwrap() error {
	return err.Cause
}

// StringSizeError indicates a string length outside of the permitted range.
type StringSizeError struct {
	// Length is the decoded length field.
	Length int32
	// Max is the largest permitted magnitude.
	Max int
}

func (err StringSizeError) Error() string {
	return fmt.Sprintf("string too large: length %d exceeds %d", err.Length, err.Max)
}

func (err StringSizeError) Is(target error) bool {
	return target == ErrStringTooLarge
}

// MagicError indicates a chunk header with an unexpected signature.
type MagicError struct {
	Got uint32
}

func (err MagicError) Error() string {
	return fmt.Sprintf("bad chunk magic: expected 0x%08X, got 0x%08X", chunkMagic, err.Got)
}

func (err MagicError) Is(target error) bool {
	return target == ErrBadChunkMagic
}

// ChunkSizeError indicates a chunk whose declared sizes cannot be used.
type ChunkSizeError struct {
	Compressed   int32
	Uncompressed int32
	// Max is the largest uncompressed size accepted by the decoder.
	Max int64
}

func (err ChunkSizeError) Error() string {
	return fmt.Sprintf("chunk too large: compressed %d, uncompressed %d, limit %d", err.Compressed, err.Uncompressed, err.Max)
}

func (err ChunkSizeError) Is(target error) bool {
	return target == ErrChunkTooLarge
}

// CompressionError wraps an error reported by a compressor. It is always
// fatal.
type CompressionError struct {
	// Codec is the name of the compressor.
	Codec string
	// Inflate is true when the error occurred while decompressing.
	Inflate bool

	Cause error
}

func (err CompressionError) Error() string {
	op := "deflate"
	if err.Inflate {
		op = "inflate"
	}
	if err.Cause == nil {
		return err.Codec + " " + op
	}
	return err.Codec + " " + op + ": " + err.Cause.Error()
}

func (err CompressionError) Unwrap() error {
	return err.Cause
}

// CountMismatchError is a warning indicating that the object table of a body
// could not be paired with its header table. The body is decoded with headers
// only.
type CountMismatchError struct {
	Headers int32
	Objects int32
}

func (err CountMismatchError) Error() string {
	return fmt.Sprintf("%s (%d headers, %d objects)", ErrCountMismatch, err.Headers, err.Objects)
}

func (err CountMismatchError) Is(target error) bool {
	return target == ErrCountMismatch
}

// KindError indicates an object header tag that is not known.
type KindError struct {
	Index int
	Tag   int32
}

func (err KindError) Error() string {
	return fmt.Sprintf("object header %d: unknown object kind %d", err.Index, err.Tag)
}

func (err KindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// ObjectError indicates an error that occurred within an object.
type ObjectError struct {
	// Index is the position of the object within the object table.
	Index int
	// Name is the instance name from the paired header.
	Name string

	Cause error
}

func (err ObjectError) Error() string {
	return fmt.Sprintf("object %d %q: %s", err.Index, err.Name, err.Cause)
}

func (err ObjectError) Unwrap() error {
	return err.Cause
}

// VersionError indicates a save version that the decoder does not handle.
type VersionError struct {
	SaveVersion int32
}

func (err VersionError) Error() string {
	return fmt.Sprintf("unsupported save version %d", err.SaveVersion)
}

func (err VersionError) Is(target error) bool {
	return target == ErrUncompressedBody
}

// DataError wraps an error that occurred while encoding or decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// ChunkError indicates an error that occurred within a chunk.
type ChunkError struct {
	// Index is the position of the chunk within the file.
	Index int
	// Offset is the file offset of the chunk header.
	Offset int64

	Cause error
}

func (err ChunkError) Error() string {
	return fmt.Sprintf("chunk #%d at %d: %s", err.Index, err.Offset, err.Cause)
}

func (err ChunkError) Unwrap() error {
	return err.Cause
}
