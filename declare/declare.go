// The declare package is used to generate save file bodies in a declarative
// style.
//
// Most items have a Declare method, which returns a new savfile structure
// corresponding to the declared item.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/factorysave/savfile/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"github.com/factorysave/savfile"
)

// DefaultLevel is the root object of declared objects that do not have a Level
// declaration.
const DefaultLevel = "Persistent_Level"

// primary is implemented by declarations that can be directly within a Body
// declaration.
type primary interface {
	primary()
}

// Body declares a savfile.Body. It is a list that contains Actor, Component,
// and Reference declarations.
type Body []primary

// Declare evaluates the Body declaration. Objects are placed into the tables
// in the order they are declared. Components declared within an actor are
// placed immediately after the actor.
func (dbody Body) Declare() *savfile.Body {
	body, _ := savfile.NewBody(nil, nil, nil)
	for _, p := range dbody {
		switch p := p.(type) {
		case actor:
			p.declare(body)
		case component:
			h, o := p.declare("")
			appendObject(body, h, o)
		case reference:
			body.References = append(body.References, p.Declare())
		}
	}
	return body
}

// element is implemented by declarations that can be within an object
// declaration.
type element interface {
	element()
}

// actor represents the declaration of a savfile.ActorHeader and its
// savfile.ActorObject.
type actor struct {
	typePath   string
	name       string
	level      string
	transform  *transform
	placed     bool
	parent     *Parent
	properties []byte
	components []component
}

func (actor) primary() {}

// Actor declares an actor with a type path, an instance name, and a series of
// elements. An element can be a Level, Position, Rotation, Scale, Placed,
// Parent, or Properties declaration. An element can also be a Component
// declaration, which becomes a component of the actor.
func Actor(typePath, name string, elements ...element) actor {
	a := actor{typePath: typePath, name: name, level: DefaultLevel}
	for _, e := range elements {
		switch e := e.(type) {
		case Level:
			a.level = string(e)
		case Position:
			a.xform().position = savfile.Vector3(e)
		case Rotation:
			a.xform().rotation = savfile.Quat(e)
		case Scale:
			a.xform().scale = savfile.Vector3(e)
		case Placed:
			a.placed = bool(e)
		case Parent:
			p := e
			a.parent = &p
		case Properties:
			a.properties = append(a.properties, e...)
		case component:
			a.components = append(a.components, e)
		}
	}
	return a
}

func (a *actor) xform() *transform {
	if a.transform == nil {
		a.transform = &transform{
			rotation: savfile.Quat{W: 1},
			scale:    savfile.Vector3{X: 1, Y: 1, Z: 1},
		}
	}
	return a.transform
}

func (a actor) header() *savfile.ActorHeader {
	h := &savfile.ActorHeader{
		TypePath:     savfile.NewString(a.typePath),
		RootObject:   savfile.NewString(a.level),
		InstanceName: savfile.NewString(a.name),
		Rotation:     savfile.Quat{W: 1},
		Scale:        savfile.Vector3{X: 1, Y: 1, Z: 1},
	}
	if a.transform != nil {
		h.NeedTransform = 1
		h.Rotation = a.transform.rotation
		h.Position = a.transform.position
		h.Scale = a.transform.scale
	}
	if a.placed {
		h.WasPlacedInLevel = 1
	}
	return h
}

func (a actor) object() *savfile.ActorObject {
	o := &savfile.ActorObject{
		ParentObjectRoot: savfile.NewString(""),
		ParentObjectName: savfile.NewString(""),
		ComponentCount:   int32(len(a.components)),
		Properties:       append([]byte{}, a.properties...),
	}
	if a.parent != nil {
		o.ParentObjectRoot = savfile.NewString(a.parent.Root)
		o.ParentObjectName = savfile.NewString(a.parent.Name)
	}
	return o
}

func (a actor) declare(body *savfile.Body) {
	appendObject(body, a.header(), a.object())
	for _, c := range a.components {
		h, o := c.declare(a.name)
		appendObject(body, h, o)
	}
}

// appendObject appends a declared object to body. Declarations always pair
// headers and objects of the same kind, so a failure is a bug in this
// package.
func appendObject(body *savfile.Body, h savfile.ObjectHeader, o savfile.Object) {
	if err := body.Append(h, o); err != nil {
		panic("declare: " + err.Error())
	}
}

// Declare evaluates the Actor declaration, generating the header and object
// of the actor. Components are not included.
func (a actor) Declare() (*savfile.ActorHeader, *savfile.ActorObject) {
	return a.header(), a.object()
}

// component represents the declaration of a savfile.ComponentHeader and its
// savfile.ComponentObject.
type component struct {
	typePath   string
	name       string
	level      string
	parent     string
	properties []byte
}

func (component) primary() {}
func (component) element() {}

// Component declares a component with a type path, an instance name, and a
// series of elements. An element can be a Level, ParentActor, or Properties
// declaration. When declared within an Actor, the parent actor name is the
// instance name of the actor.
func Component(typePath, name string, elements ...element) component {
	c := component{typePath: typePath, name: name, level: DefaultLevel}
	for _, e := range elements {
		switch e := e.(type) {
		case Level:
			c.level = string(e)
		case ParentActor:
			c.parent = string(e)
		case Properties:
			c.properties = append(c.properties, e...)
		}
	}
	return c
}

func (c component) declare(parent string) (*savfile.ComponentHeader, *savfile.ComponentObject) {
	if parent == "" {
		parent = c.parent
	}
	return &savfile.ComponentHeader{
			TypePath:        savfile.NewString(c.typePath),
			RootObject:      savfile.NewString(c.level),
			InstanceName:    savfile.NewString(c.name),
			ParentActorName: savfile.NewString(parent),
		}, &savfile.ComponentObject{
			Properties: append([]byte{}, c.properties...),
		}
}

// Declare evaluates the Component declaration.
func (c component) Declare() (*savfile.ComponentHeader, *savfile.ComponentObject) {
	return c.declare("")
}

type reference [2]string

func (reference) primary() {}

// Reference declares an entry in the reference table of a body.
func Reference(level, path string) reference {
	return reference{level, path}
}

// Declare evaluates the Reference declaration.
func (r reference) Declare() savfile.ObjectReference {
	return savfile.ObjectReference{
		LevelName: savfile.NewString(r[0]),
		PathName:  savfile.NewString(r[1]),
	}
}

type transform struct {
	rotation savfile.Quat
	position savfile.Vector3
	scale    savfile.Vector3
}

// Level declares the root object of an actor or component. If not declared,
// DefaultLevel is used.
type Level string

func (Level) element() {}

// Position declares the position of an actor. Declaring any part of the
// transform marks the actor as needing a transform.
type Position savfile.Vector3

func (Position) element() {}

// Rotation declares the rotation of an actor. If not declared, the identity
// rotation is used.
type Rotation savfile.Quat

func (Rotation) element() {}

// Scale declares the scale of an actor. If not declared, a scale of 1 is used.
type Scale savfile.Vector3

func (Scale) element() {}

// Placed declares whether an actor was placed in the level.
type Placed bool

func (Placed) element() {}

// Parent declares the parent object of an actor.
type Parent struct {
	Root string
	Name string
}

func (Parent) element() {}

// ParentActor declares the parent actor name of a component declared outside
// of an actor.
type ParentActor string

func (ParentActor) element() {}

// Properties declares the raw property bytes of an object. Multiple
// declarations are concatenated.
type Properties []byte

func (Properties) element() {}
