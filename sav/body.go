package sav

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/anaminus/parse"
	"github.com/factorysave/savfile"
	"github.com/factorysave/savfile/errors"
)

// Smallest encoded sizes, used to bound allocations by the remaining input.
const (
	minHeaderSize    = 4 + 4*4
	minReferenceSize = 2 * 4
)

func readComponentHeader(f *parse.BinaryReader, h *savfile.ComponentHeader) (failed bool) {
	return readString(f, &h.TypePath) ||
		readString(f, &h.RootObject) ||
		readString(f, &h.InstanceName) ||
		readString(f, &h.ParentActorName)
}

func writeComponentHeader(f *parse.BinaryWriter, h *savfile.ComponentHeader) (failed bool) {
	return writeString(f, h.TypePath) ||
		writeString(f, h.RootObject) ||
		writeString(f, h.InstanceName) ||
		writeString(f, h.ParentActorName)
}

func readActorHeader(f *parse.BinaryReader, h *savfile.ActorHeader) (failed bool) {
	return readString(f, &h.TypePath) ||
		readString(f, &h.RootObject) ||
		readString(f, &h.InstanceName) ||
		f.Number(&h.NeedTransform) ||
		readQuat(f, &h.Rotation) ||
		readVector3(f, &h.Position) ||
		readVector3(f, &h.Scale) ||
		f.Number(&h.WasPlacedInLevel)
}

func writeActorHeader(f *parse.BinaryWriter, h *savfile.ActorHeader) (failed bool) {
	return writeString(f, h.TypePath) ||
		writeString(f, h.RootObject) ||
		writeString(f, h.InstanceName) ||
		f.Number(h.NeedTransform) ||
		writeQuat(f, h.Rotation) ||
		writeVector3(f, h.Position) ||
		writeVector3(f, h.Scale) ||
		f.Number(h.WasPlacedInLevel)
}

// readPayload reads n opaque bytes. n is checked against the remaining input
// before allocating.
func readPayload(f *parse.BinaryReader, r *bytes.Reader, n int64, data *[]byte) (failed bool) {
	if n < 0 {
		f.Add(0, fmt.Errorf("%w: negative payload length %d", ErrObjectSize, n))
		return true
	}
	if n > int64(r.Len()) {
		f.Add(0, fmt.Errorf("%w: payload of %d bytes, %d remaining", ErrTruncated, n, r.Len()))
		return true
	}
	*data = make([]byte, n)
	return f.Bytes(*data)
}

func readComponentObject(f *parse.BinaryReader, r *bytes.Reader, o *savfile.ComponentObject) (failed bool) {
	var size int32
	if f.Number(&size) {
		return true
	}
	return readPayload(f, r, int64(size), &o.Properties)
}

func writeComponentObject(f *parse.BinaryWriter, o *savfile.ComponentObject) (failed bool) {
	return f.Number(int32(len(o.Properties))) ||
		f.Bytes(o.Properties)
}

// actorPayloadLen returns the length of the properties of an actor object. The
// declared size of an actor covers the length of each parent string, the
// component count, and the properties.
func actorPayloadLen(size int32, root, name savfile.String) int64 {
	return int64(size) - 4 - int64(root.Len()) - int64(name.Len())
}

func readActorObject(f *parse.BinaryReader, r *bytes.Reader, o *savfile.ActorObject) (failed bool) {
	var size int32
	if f.Number(&size) ||
		readString(f, &o.ParentObjectRoot) ||
		readString(f, &o.ParentObjectName) ||
		f.Number(&o.ComponentCount) {
		return true
	}
	return readPayload(f, r, actorPayloadLen(size, o.ParentObjectRoot, o.ParentObjectName), &o.Properties)
}

func writeActorObject(f *parse.BinaryWriter, o *savfile.ActorObject) (failed bool) {
	// Strings are always written with a length of len(Value)+1.
	size := 4 + (len(o.ParentObjectRoot.Value) + 1) + (len(o.ParentObjectName.Value) + 1) + len(o.Properties)
	return f.Number(int32(size)) ||
		writeString(f, o.ParentObjectRoot) ||
		writeString(f, o.ParentObjectName) ||
		f.Number(o.ComponentCount) ||
		f.Bytes(o.Properties)
}

func readReference(f *parse.BinaryReader, ref *savfile.ObjectReference) (failed bool) {
	return readString(f, &ref.LevelName) ||
		readString(f, &ref.PathName)
}

func writeReference(f *parse.BinaryWriter, ref savfile.ObjectReference) (failed bool) {
	return writeString(f, ref.LevelName) ||
		writeString(f, ref.PathName)
}

// capacity returns count bounded by the number of entries of at least min
// bytes that fit in the remaining input.
func capacity(count int32, r *bytes.Reader, min int) int {
	if count < 0 {
		return 0
	}
	if n := r.Len() / min; int(count) > n {
		return n
	}
	return int(count)
}

func bodyError(f *parse.BinaryReader, err error) error {
	f.Add(0, err)
	if err = f.Err(); err != nil {
		return DataError{Offset: f.N(), Cause: truncated(err)}
	}
	return nil
}

// decodeBody parses a decompressed body.
//
// Object bodies are not tagged; the kind of each is taken from the header at
// the same index. If the object count differs from the header count, the
// objects cannot be paired with headers, so decoding stops and a partial body
// is returned with a CountMismatchError warning.
func decodeBody(data []byte) (body *savfile.Body, warn, err error) {
	r := bytes.NewReader(data)
	f := parse.NewBinaryReader(r)
	var warns errors.Errors

	var size int32
	if f.Number(&size) {
		return nil, nil, bodyError(f, nil)
	}
	if int64(size) != int64(len(data))-4 {
		warns = append(warns, DataError{Offset: 0, Cause: fmt.Errorf("%w (field %d, actual %d)", ErrBodySize, size, len(data)-4)})
	}

	var headerCount int32
	if f.Number(&headerCount) {
		return nil, warns.Return(), bodyError(f, nil)
	}
	if headerCount < 0 {
		return nil, warns.Return(), bodyError(f, fmt.Errorf("negative header count %d", headerCount))
	}

	headers := make([]savfile.ObjectHeader, 0, capacity(headerCount, r, minHeaderSize))
	for i := 0; i < int(headerCount); i++ {
		var tag int32
		if f.Number(&tag) {
			return nil, warns.Return(), bodyError(f, nil)
		}
		switch savfile.Kind(tag) {
		case savfile.KindComponent:
			h := new(savfile.ComponentHeader)
			if readComponentHeader(f, h) {
				return nil, warns.Return(), bodyError(f, nil)
			}
			headers = append(headers, h)
		case savfile.KindActor:
			h := new(savfile.ActorHeader)
			if readActorHeader(f, h) {
				return nil, warns.Return(), bodyError(f, nil)
			}
			headers = append(headers, h)
		default:
			return nil, warns.Return(), bodyError(f, KindError{Index: i, Tag: tag})
		}
	}

	var objectCount int32
	if f.Number(&objectCount) {
		return nil, warns.Return(), bodyError(f, nil)
	}
	if objectCount != headerCount {
		warns = append(warns, CountMismatchError{Headers: headerCount, Objects: objectCount})
		body = savfile.NewPartialBody(headers, objectCount)
		body.Size = size
		return body, warns.Return(), nil
	}

	objects := make([]savfile.Object, len(headers))
	for i, h := range headers {
		var failed bool
		switch h.Kind() {
		case savfile.KindComponent:
			o := new(savfile.ComponentObject)
			failed = readComponentObject(f, r, o)
			objects[i] = o
		case savfile.KindActor:
			o := new(savfile.ActorObject)
			failed = readActorObject(f, r, o)
			objects[i] = o
		}
		if failed {
			return nil, warns.Return(), DataError{Offset: f.N(), Cause: ObjectError{Index: i, Name: h.Name(), Cause: truncated(f.Err())}}
		}
	}

	var refCount int32
	if f.Number(&refCount) {
		return nil, warns.Return(), bodyError(f, nil)
	}
	if refCount < 0 {
		return nil, warns.Return(), bodyError(f, fmt.Errorf("negative reference count %d", refCount))
	}
	refs := make([]savfile.ObjectReference, 0, capacity(refCount, r, minReferenceSize))
	for i := 0; i < int(refCount); i++ {
		var ref savfile.ObjectReference
		if readReference(f, &ref) {
			return nil, warns.Return(), bodyError(f, nil)
		}
		refs = append(refs, ref)
	}

	if r.Len() > 0 {
		warns = append(warns, DataError{Offset: f.N(), Cause: fmt.Errorf("%w (%d bytes)", ErrTrailingData, r.Len())})
	}

	if body, err = savfile.NewBody(headers, objects, refs); err != nil {
		return nil, warns.Return(), err
	}
	body.Size = size
	return body, warns.Return(), nil
}

// encodeBody serializes body. The size field at the start cannot be known
// until everything else is written, so it is written as zero and patched
// afterwards to the length of the result minus the field itself. body.Size is
// updated to match.
func encodeBody(body *savfile.Body) (data []byte, err error) {
	if body.Partial() {
		return nil, ErrPartialBody
	}
	// Headers and objects are mutable in place, so the pairing is checked
	// again before anything is written.
	headers, objects := body.Headers(), body.Objects()
	if len(headers) != len(objects) {
		return nil, fmt.Errorf("%w: %d headers, %d objects", ErrCountMismatch, len(headers), len(objects))
	}
	for i, h := range headers {
		if h.Kind() != objects[i].Kind() {
			return nil, savfile.KindError{Index: i, Header: h.Kind(), Object: objects[i].Kind()}
		}
	}

	var buf bytes.Buffer
	f := parse.NewBinaryWriter(&buf)

	f.Number(int32(0))
	f.Number(int32(body.Len()))
	for _, h := range headers {
		if f.Number(int32(h.Kind())) {
			break
		}
		switch h := h.(type) {
		case *savfile.ComponentHeader:
			writeComponentHeader(f, h)
		case *savfile.ActorHeader:
			writeActorHeader(f, h)
		}
	}

	f.Number(int32(len(objects)))
	for _, o := range objects {
		switch o := o.(type) {
		case *savfile.ComponentObject:
			writeComponentObject(f, o)
		case *savfile.ActorObject:
			writeActorObject(f, o)
		}
	}

	f.Number(int32(len(body.References)))
	for _, ref := range body.References {
		writeReference(f, ref)
	}

	if n, err := f.End(); err != nil {
		return nil, DataError{Offset: n, Cause: err}
	}

	data = buf.Bytes()
	binary.LittleEndian.PutUint32(data[:4], uint32(len(data)-4))
	body.Size = int32(len(data) - 4)
	return data, nil
}
