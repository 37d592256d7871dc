package savfile

import (
	"errors"
	"fmt"
)

// Kind identifies the variant of an object header or object body. The value
// matches the tag stored before each header in a file.
type Kind int32

const (
	KindComponent Kind = 0
	KindActor     Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "Component"
	case KindActor:
		return "Actor"
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// Valid returns whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindComponent || k == KindActor
}

////////////////////////////////////////////////////////////////

// Vector3 is a position or scale.
type Vector3 struct {
	X, Y, Z float32
}

// Quat is a rotation quaternion.
type Quat struct {
	X, Y, Z, W float32
}

////////////////////////////////////////////////////////////////

// ObjectHeader is an entry in the object header table. It is implemented by
// *ComponentHeader and *ActorHeader only.
type ObjectHeader interface {
	Kind() Kind
	// Name returns the instance name of the object.
	Name() string
	objectHeader()
}

// ComponentHeader describes an object that is attached to an actor.
type ComponentHeader struct {
	TypePath        String
	RootObject      String
	InstanceName    String
	ParentActorName String
}

func (*ComponentHeader) Kind() Kind     { return KindComponent }
func (h *ComponentHeader) Name() string { return h.InstanceName.Value }
func (*ComponentHeader) objectHeader()  {}

// ActorHeader describes an object placed in the world.
type ActorHeader struct {
	TypePath     String
	RootObject   String
	InstanceName String

	NeedTransform int32
	Rotation      Quat
	Position      Vector3
	Scale         Vector3

	WasPlacedInLevel int32
}

func (*ActorHeader) Kind() Kind     { return KindActor }
func (h *ActorHeader) Name() string { return h.InstanceName.Value }
func (*ActorHeader) objectHeader()  {}

////////////////////////////////////////////////////////////////

// Object is an entry in the object table. It is implemented by
// *ComponentObject and *ActorObject only.
type Object interface {
	Kind() Kind
	// Payload returns the undecoded property bytes of the object.
	Payload() []byte
	objectBody()
}

// ComponentObject is the body of a component. Its properties are kept as
// raw bytes.
type ComponentObject struct {
	Properties []byte
}

func (*ComponentObject) Kind() Kind        { return KindComponent }
func (o *ComponentObject) Payload() []byte { return o.Properties }
func (*ComponentObject) objectBody()       {}

// ActorObject is the body of an actor.
type ActorObject struct {
	ParentObjectRoot String
	ParentObjectName String
	ComponentCount   int32

	// Properties holds everything following ComponentCount, including the
	// component references and properties, as raw bytes.
	Properties []byte
}

func (*ActorObject) Kind() Kind        { return KindActor }
func (o *ActorObject) Payload() []byte { return o.Properties }
func (*ActorObject) objectBody()       {}

////////////////////////////////////////////////////////////////

// ObjectReference refers to an object by level and path.
type ObjectReference struct {
	LevelName String
	PathName  String
}

////////////////////////////////////////////////////////////////

// ErrBodyLength indicates that the object table and the header table of a
// body have different lengths.
var ErrBodyLength = errors.New("object table length does not match header table length")

// KindError indicates that an object does not have the same kind as the
// header at the same index.
type KindError struct {
	Index  int
	Header Kind
	Object Kind
}

func (err KindError) Error() string {
	return fmt.Sprintf("object %d: %s body paired with %s header", err.Index, err.Object, err.Header)
}

// Body is the decompressed content of a save file.
//
// The object table is paired with the header table by position: the nth
// object is the body of the nth header, and has the same kind. Body
// guarantees this; it can only be created with NewBody or NewPartialBody.
// Headers and objects may be modified in place; encoding fails if a header
// and its object no longer have the same kind.
type Body struct {
	// Size is the length of the encoded body, excluding the size field itself,
	// as reported by the decoded file. The encoder recomputes it.
	Size int32

	// References is the table of collected object references.
	References []ObjectReference

	headers []ObjectHeader
	objects []Object

	partial         bool
	declaredObjects int32
}

// NewBody returns a Body with the given tables. Returns an error if the length
// of objects differs from that of headers, if any entry is nil, or if the
// kinds at any index differ.
func NewBody(headers []ObjectHeader, objects []Object, refs []ObjectReference) (*Body, error) {
	if len(headers) != len(objects) {
		return nil, fmt.Errorf("%w (%d headers, %d objects)", ErrBodyLength, len(headers), len(objects))
	}
	for i, h := range headers {
		o := objects[i]
		if h == nil || o == nil {
			return nil, fmt.Errorf("object %d: nil entry", i)
		}
		if h.Kind() != o.Kind() {
			return nil, KindError{Index: i, Header: h.Kind(), Object: o.Kind()}
		}
	}
	return &Body{
		References:      refs,
		headers:         headers,
		objects:         objects,
		declaredObjects: int32(len(objects)),
	}, nil
}

// NewPartialBody returns a Body that contains only headers. It represents a
// file whose object count did not match its header count, so that objects
// could not be paired with headers. declared is the object count stated by the
// file.
func NewPartialBody(headers []ObjectHeader, declared int32) *Body {
	return &Body{
		headers:         headers,
		partial:         true,
		declaredObjects: declared,
	}
}

// Partial returns whether the body contains headers only.
func (b *Body) Partial() bool {
	return b.partial
}

// DeclaredObjects returns the object count stated by the decoded file. For a
// complete body, this is the length of the object table.
func (b *Body) DeclaredObjects() int32 {
	return b.declaredObjects
}

// Len returns the number of entries in the header table.
func (b *Body) Len() int {
	return len(b.headers)
}

// Headers returns the header table. The slice must not be resized.
func (b *Body) Headers() []ObjectHeader {
	return b.headers
}

// Objects returns the object table, which is empty for a partial body. The
// slice must not be resized.
func (b *Body) Objects() []Object {
	return b.objects
}

// Header returns the header at index i.
func (b *Body) Header(i int) ObjectHeader {
	return b.headers[i]
}

// Object returns the object at index i, or nil if the body is partial.
func (b *Body) Object(i int) Object {
	if b.partial {
		return nil
	}
	return b.objects[i]
}

// Append adds a header and its object to the end of the tables.
func (b *Body) Append(h ObjectHeader, o Object) error {
	if b.partial {
		return errors.New("cannot append to partial body")
	}
	if h == nil || o == nil {
		return errors.New("nil entry")
	}
	if h.Kind() != o.Kind() {
		return KindError{Index: len(b.headers), Header: h.Kind(), Object: o.Kind()}
	}
	b.headers = append(b.headers, h)
	b.objects = append(b.objects, o)
	b.declaredObjects = int32(len(b.objects))
	return nil
}

// Actors returns the headers of all actors in the body, in table order.
func (b *Body) Actors() []*ActorHeader {
	var actors []*ActorHeader
	for _, h := range b.headers {
		if h, ok := h.(*ActorHeader); ok {
			actors = append(actors, h)
		}
	}
	return actors
}

// Find returns the index of the first object with the given instance name, or
// -1 if there is none.
func (b *Body) Find(name string) int {
	for i, h := range b.headers {
		if h.Name() == name {
			return i
		}
	}
	return -1
}
