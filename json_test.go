package savfile_test

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/factorysave/savfile"
)

func TestBodyJSON(t *testing.T) {
	body, _ := savfile.NewBody(nil, nil, nil)
	body.Append(actor("Foo"))
	body.Append(component("Bar"))
	ah, ao := actor("Wide")
	ah.InstanceName = savfile.StringFromBytes(-4, []byte{'W', 0, 0, 0})
	body.Append(ah, ao)
	body.References = []savfile.ObjectReference{{
		LevelName: savfile.NewString("Persistent_Level"),
		PathName:  savfile.NewString("Persistent_Level:PersistentLevel.Foo"),
	}}

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if !strings.Contains(string(b), `"instance_name":"Foo"`) {
		t.Errorf("unexpected JSON %s", b)
	}

	var got savfile.Body
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if got.Len() != body.Len() || got.Partial() {
		t.Fatalf("unexpected body length %d", got.Len())
	}
	for i := 0; i < body.Len(); i++ {
		if !reflect.DeepEqual(got.Header(i), body.Header(i)) {
			t.Errorf("header %d mismatch:\n\texpected %+v\n\tgot      %+v", i, body.Header(i), got.Header(i))
		}
		if !reflect.DeepEqual(got.Object(i), body.Object(i)) {
			t.Errorf("object %d mismatch:\n\texpected %+v\n\tgot      %+v", i, body.Object(i), got.Object(i))
		}
	}
	if !reflect.DeepEqual(got.References, body.References) {
		t.Errorf("references mismatch: %+v", got.References)
	}
}

func TestPartialBodyJSON(t *testing.T) {
	ah, _ := actor("Foo")
	body := savfile.NewPartialBody([]savfile.ObjectHeader{ah}, 4)

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	var got savfile.Body
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !got.Partial() || got.DeclaredObjects() != 4 || got.Len() != 1 {
		t.Errorf("unexpected partial body: partial %t, declared %d, len %d", got.Partial(), got.DeclaredObjects(), got.Len())
	}
}

func TestBodyJSONNonFinite(t *testing.T) {
	ah, ao := actor("Foo")
	ah.Position = savfile.Vector3{
		X: float32(math.NaN()),
		Y: float32(math.Inf(1)),
		Z: float32(math.Inf(-1)),
	}
	body, _ := savfile.NewBody(nil, nil, nil)
	body.Append(ah, ao)

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if !strings.Contains(string(b), `"position":["NaN","+Inf","-Inf"]`) {
		t.Errorf("unexpected JSON %s", b)
	}

	var got savfile.Body
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	h, ok := got.Header(0).(*savfile.ActorHeader)
	if !ok {
		t.Fatalf("expected actor header, got %T", got.Header(0))
	}
	p := h.Position
	if !math.IsNaN(float64(p.X)) || !math.IsInf(float64(p.Y), 1) || !math.IsInf(float64(p.Z), -1) {
		t.Errorf("unexpected position %v", p)
	}

	invalid := strings.Replace(string(b), `"NaN"`, `"1.5"`, 1)
	if err := json.Unmarshal([]byte(invalid), &got); err == nil {
		t.Error("expected error for finite number encoded as string")
	}
}

func TestBodyJSONInvalid(t *testing.T) {
	for _, s := range []string{
		`{}`,
		`{"savfile_version":1,"objects":[]}`,
		`{"savfile_version":0}`,
		`{"savfile_version":0,"objects":[{"kind":"Gadget"}]}`,
		`{"savfile_version":0,"objects":[{"kind":"Component","type_path":"a"}]}`,
	} {
		var body savfile.Body
		if err := json.Unmarshal([]byte(s), &body); err == nil {
			t.Errorf("%s: expected error", s)
		}
	}
}
