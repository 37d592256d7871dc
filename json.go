package savfile

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// MarshalJSON encodes the body as a JSON object. Property payloads are encoded
// as base64 strings.
func (b *Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(bodyToJSONInterface(b))
}

// UnmarshalJSON decodes a body from a JSON object produced by MarshalJSON.
func (b *Body) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	body, ok := bodyFromJSONInterface(v)
	if !ok {
		return errors.New("invalid JSON Body object")
	}
	*b = *body
	return nil
}

const jsonVersion = 0

func indexJSON(v, i, p interface{}) bool {
	var value interface{}
	switch object := v.(type) {
	case map[string]interface{}:
		index, ok := i.(string)
		if !ok {
			return false
		}
		if value, ok = object[index]; !ok {
			return false
		}
	case []interface{}:
		index, ok := i.(int)
		if !ok {
			return false
		}
		if index >= len(object) || index < 0 {
			return false
		}
		value = object[index]
	default:
		return false
	}
	switch p := p.(type) {
	case *bool:
		value, ok := value.(bool)
		if !ok {
			return false
		}
		*p = value
	case *float64:
		value, ok := value.(float64)
		if !ok {
			return false
		}
		*p = value
	case *string:
		value, ok := value.(string)
		if !ok {
			return false
		}
		*p = value
	case *[]interface{}:
		value, ok := value.([]interface{})
		if !ok {
			return false
		}
		*p = value
	case *interface{}:
		*p = value
	}
	return true
}

////////////////////////////////////////////////////////////////

// A plain string is a JSON string. A wide string keeps its raw bytes.
func stringToJSONInterface(s String) interface{} {
	if s.Wide() {
		return map[string]interface{}{
			"wide": base64.StdEncoding.EncodeToString(s.Raw),
		}
	}
	return s.Value
}

func stringFromJSONInterface(v interface{}) (s String, ok bool) {
	switch v := v.(type) {
	case string:
		return NewString(v), true
	case map[string]interface{}:
		var wide string
		if !indexJSON(v, "wide", &wide) {
			return s, false
		}
		raw, err := base64.StdEncoding.DecodeString(wide)
		if err != nil {
			return s, false
		}
		return StringFromBytes(-int32(len(raw)), raw), true
	}
	return s, false
}

// floatsToJSONInterface encodes each value as a JSON number. Values that JSON
// cannot represent are encoded as the strings "NaN", "+Inf" and "-Inf".
func floatsToJSONInterface(f ...float32) interface{} {
	a := make([]interface{}, len(f))
	for i, v := range f {
		if n := float64(v); math.IsNaN(n) || math.IsInf(n, 0) {
			a[i] = strconv.FormatFloat(n, 'g', -1, 32)
		} else {
			a[i] = n
		}
	}
	return a
}

func floatsFromJSONInterface(v interface{}, f ...*float32) bool {
	a, ok := v.([]interface{})
	if !ok || len(a) != len(f) {
		return false
	}
	for i := range f {
		switch n := a[i].(type) {
		case float64:
			*f[i] = float32(n)
		case string:
			x, err := strconv.ParseFloat(n, 32)
			if err != nil || !(math.IsNaN(x) || math.IsInf(x, 0)) {
				return false
			}
			*f[i] = float32(x)
		default:
			return false
		}
	}
	return true
}

func bytesToJSONInterface(b []byte) interface{} {
	return base64.StdEncoding.EncodeToString(b)
}

func bytesFromJSONInterface(v interface{}) ([]byte, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

////////////////////////////////////////////////////////////////

func bodyToJSONInterface(b *Body) interface{} {
	ibody := make(map[string]interface{}, 5)
	ibody["savfile_version"] = float64(jsonVersion)
	if b.Partial() {
		ibody["partial"] = true
		ibody["declared_objects"] = float64(b.DeclaredObjects())
	}
	objects := make([]interface{}, b.Len())
	for i, h := range b.Headers() {
		objects[i] = objectToJSONInterface(h, b.Object(i))
	}
	ibody["objects"] = objects
	refs := make([]interface{}, len(b.References))
	for i, ref := range b.References {
		refs[i] = map[string]interface{}{
			"level_name": stringToJSONInterface(ref.LevelName),
			"path_name":  stringToJSONInterface(ref.PathName),
		}
	}
	ibody["references"] = refs
	return ibody
}

// objectToJSONInterface merges a header and its object into one JSON object.
// o is nil for partial bodies.
func objectToJSONInterface(h ObjectHeader, o Object) interface{} {
	iobj := make(map[string]interface{}, 14)
	iobj["kind"] = h.Kind().String()
	switch h := h.(type) {
	case *ComponentHeader:
		iobj["type_path"] = stringToJSONInterface(h.TypePath)
		iobj["root_object"] = stringToJSONInterface(h.RootObject)
		iobj["instance_name"] = stringToJSONInterface(h.InstanceName)
		iobj["parent_actor_name"] = stringToJSONInterface(h.ParentActorName)
	case *ActorHeader:
		iobj["type_path"] = stringToJSONInterface(h.TypePath)
		iobj["root_object"] = stringToJSONInterface(h.RootObject)
		iobj["instance_name"] = stringToJSONInterface(h.InstanceName)
		iobj["need_transform"] = float64(h.NeedTransform)
		iobj["rotation"] = floatsToJSONInterface(h.Rotation.X, h.Rotation.Y, h.Rotation.Z, h.Rotation.W)
		iobj["position"] = floatsToJSONInterface(h.Position.X, h.Position.Y, h.Position.Z)
		iobj["scale"] = floatsToJSONInterface(h.Scale.X, h.Scale.Y, h.Scale.Z)
		iobj["was_placed_in_level"] = float64(h.WasPlacedInLevel)
	}
	switch o := o.(type) {
	case *ComponentObject:
		iobj["properties"] = bytesToJSONInterface(o.Properties)
	case *ActorObject:
		iobj["parent_object_root"] = stringToJSONInterface(o.ParentObjectRoot)
		iobj["parent_object_name"] = stringToJSONInterface(o.ParentObjectName)
		iobj["component_count"] = float64(o.ComponentCount)
		iobj["properties"] = bytesToJSONInterface(o.Properties)
	}
	return iobj
}

func bodyFromJSONInterface(ibody interface{}) (body *Body, ok bool) {
	var version float64
	if !indexJSON(ibody, "savfile_version", &version) {
		return nil, false
	}

	switch int(version) {
	case 0:
		var partial bool
		indexJSON(ibody, "partial", &partial)

		var objects []interface{}
		if !indexJSON(ibody, "objects", &objects) {
			return nil, false
		}
		headers := make([]ObjectHeader, 0, len(objects))
		var bodies []Object
		for _, iobj := range objects {
			h, o, ok := objectFromJSONInterface(iobj, !partial)
			if !ok {
				return nil, false
			}
			headers = append(headers, h)
			if !partial {
				bodies = append(bodies, o)
			}
		}

		if partial {
			var declared float64
			indexJSON(ibody, "declared_objects", &declared)
			body = NewPartialBody(headers, int32(declared))
		} else {
			var err error
			if body, err = NewBody(headers, bodies, nil); err != nil {
				return nil, false
			}
		}

		var refs []interface{}
		indexJSON(ibody, "references", &refs)
		for _, iref := range refs {
			var ref ObjectReference
			var v interface{}
			if !indexJSON(iref, "level_name", &v) {
				return nil, false
			}
			if ref.LevelName, ok = stringFromJSONInterface(v); !ok {
				return nil, false
			}
			if !indexJSON(iref, "path_name", &v) {
				return nil, false
			}
			if ref.PathName, ok = stringFromJSONInterface(v); !ok {
				return nil, false
			}
			body.References = append(body.References, ref)
		}
		return body, true
	}
	return nil, false
}

func jsonString(iobj interface{}, name string, s *String) bool {
	var v interface{}
	if !indexJSON(iobj, name, &v) {
		return false
	}
	var ok bool
	*s, ok = stringFromJSONInterface(v)
	return ok
}

func jsonInt(iobj interface{}, name string, n *int32) bool {
	var f float64
	if !indexJSON(iobj, name, &f) {
		return false
	}
	*n = int32(f)
	return true
}

func jsonFloats(iobj interface{}, name string, f ...*float32) bool {
	var v interface{}
	return indexJSON(iobj, name, &v) && floatsFromJSONInterface(v, f...)
}

func jsonBytes(iobj interface{}, name string, b *[]byte) bool {
	var v interface{}
	if !indexJSON(iobj, name, &v) {
		return false
	}
	var ok bool
	*b, ok = bytesFromJSONInterface(v)
	return ok
}

func objectFromJSONInterface(iobj interface{}, withBody bool) (h ObjectHeader, o Object, ok bool) {
	var kind string
	if !indexJSON(iobj, "kind", &kind) {
		return nil, nil, false
	}
	switch kind {
	case KindComponent.String():
		ch := new(ComponentHeader)
		if !jsonString(iobj, "type_path", &ch.TypePath) ||
			!jsonString(iobj, "root_object", &ch.RootObject) ||
			!jsonString(iobj, "instance_name", &ch.InstanceName) ||
			!jsonString(iobj, "parent_actor_name", &ch.ParentActorName) {
			return nil, nil, false
		}
		if !withBody {
			return ch, nil, true
		}
		co := new(ComponentObject)
		if !jsonBytes(iobj, "properties", &co.Properties) {
			return nil, nil, false
		}
		return ch, co, true
	case KindActor.String():
		ah := new(ActorHeader)
		if !jsonString(iobj, "type_path", &ah.TypePath) ||
			!jsonString(iobj, "root_object", &ah.RootObject) ||
			!jsonString(iobj, "instance_name", &ah.InstanceName) ||
			!jsonInt(iobj, "need_transform", &ah.NeedTransform) ||
			!jsonFloats(iobj, "rotation", &ah.Rotation.X, &ah.Rotation.Y, &ah.Rotation.Z, &ah.Rotation.W) ||
			!jsonFloats(iobj, "position", &ah.Position.X, &ah.Position.Y, &ah.Position.Z) ||
			!jsonFloats(iobj, "scale", &ah.Scale.X, &ah.Scale.Y, &ah.Scale.Z) ||
			!jsonInt(iobj, "was_placed_in_level", &ah.WasPlacedInLevel) {
			return nil, nil, false
		}
		if !withBody {
			return ah, nil, true
		}
		ao := new(ActorObject)
		if !jsonString(iobj, "parent_object_root", &ao.ParentObjectRoot) ||
			!jsonString(iobj, "parent_object_name", &ao.ParentObjectName) ||
			!jsonInt(iobj, "component_count", &ao.ComponentCount) ||
			!jsonBytes(iobj, "properties", &ao.Properties) {
			return nil, nil, false
		}
		return ah, ao, true
	}
	return nil, nil, false
}
