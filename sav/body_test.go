package sav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/factorysave/savfile"
)

func str(s string) savfile.String {
	return savfile.NewString(s)
}

func testActor(i int) (*savfile.ActorHeader, *savfile.ActorObject) {
	return &savfile.ActorHeader{
			TypePath:         str("/Game/FactoryGame/Buildable/Factory/ConstructorMk1/Build_ConstructorMk1.Build_ConstructorMk1_C"),
			RootObject:       str("Persistent_Level"),
			InstanceName:     str(fmt.Sprintf("Persistent_Level:PersistentLevel.Build_ConstructorMk1_C_%d", i)),
			NeedTransform:    1,
			Rotation:         savfile.Quat{X: 0, Y: 0, Z: float32(i) / 100, W: 1},
			Position:         savfile.Vector3{X: float32(i), Y: float32(-i), Z: 800},
			Scale:            savfile.Vector3{X: 1, Y: 1, Z: 1},
			WasPlacedInLevel: int32(i % 2),
		}, &savfile.ActorObject{
			ParentObjectRoot: str(""),
			ParentObjectName: str(""),
			ComponentCount:   int32(i % 3),
			Properties:       bytes.Repeat([]byte{byte(i)}, i%17),
		}
}

func testComponent(i int) (*savfile.ComponentHeader, *savfile.ComponentObject) {
	return &savfile.ComponentHeader{
			TypePath:        str("/Script/FactoryGame.FGFactoryConnectionComponent"),
			RootObject:      str("Persistent_Level"),
			InstanceName:    str(fmt.Sprintf("Persistent_Level:PersistentLevel.Build_ConstructorMk1_C_%d.Input0", i)),
			ParentActorName: str(fmt.Sprintf("Persistent_Level:PersistentLevel.Build_ConstructorMk1_C_%d", i)),
		}, &savfile.ComponentObject{
			Properties: bytes.Repeat([]byte{0xAA, byte(i)}, i%5),
		}
}

func testBody(t *testing.T, n int) *savfile.Body {
	body, err := savfile.NewBody(nil, nil, nil)
	if err != nil {
		t.Fatalf("new body: %s", err)
	}
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			err = body.Append(testComponent(i))
		} else {
			err = body.Append(testActor(i))
		}
		if err != nil {
			t.Fatalf("append %d: %s", i, err)
		}
	}
	for i := 0; i < n/10; i++ {
		body.References = append(body.References, savfile.ObjectReference{
			LevelName: str("Persistent_Level"),
			PathName:  str(fmt.Sprintf("Persistent_Level:PersistentLevel.Build_ConstructorMk1_C_%d", i)),
		})
	}
	return body
}

func compareBodies(t *testing.T, want, got *savfile.Body) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("length mismatch (expected %d, got %d)", want.Len(), got.Len())
	}
	for i := 0; i < want.Len(); i++ {
		if !reflect.DeepEqual(got.Header(i), want.Header(i)) {
			t.Errorf("header %d mismatch:\n\texpected %+v\n\tgot      %+v", i, want.Header(i), got.Header(i))
		}
		if !reflect.DeepEqual(got.Object(i), want.Object(i)) {
			t.Errorf("object %d mismatch:\n\texpected %+v\n\tgot      %+v", i, want.Object(i), got.Object(i))
		}
	}
	if len(got.References) != len(want.References) {
		t.Fatalf("reference count mismatch (expected %d, got %d)", len(want.References), len(got.References))
	}
	for i := range want.References {
		if !reflect.DeepEqual(got.References[i], want.References[i]) {
			t.Errorf("reference %d mismatch", i)
		}
	}
}

func TestBodyRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 150} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			body := testBody(t, n)
			data, err := encodeBody(body)
			if err != nil {
				t.Fatalf("encode: %s", err)
			}
			if size := binary.LittleEndian.Uint32(data); int(size) != len(data)-4 {
				t.Errorf("size field %d, expected %d", size, len(data)-4)
			}
			if int(body.Size) != len(data)-4 {
				t.Errorf("body.Size %d, expected %d", body.Size, len(data)-4)
			}

			got, warn, err := decodeBody(data)
			if err != nil {
				t.Fatalf("decode: %s", err)
			}
			if warn != nil {
				t.Errorf("unexpected warning: %s", warn)
			}
			if got.Partial() {
				t.Fatal("unexpected partial body")
			}
			if got.Size != body.Size {
				t.Errorf("size mismatch (expected %d, got %d)", body.Size, got.Size)
			}
			compareBodies(t, body, got)

			again, err := encodeBody(got)
			if err != nil {
				t.Fatalf("re-encode: %s", err)
			}
			if !bytes.Equal(again, data) {
				t.Error("re-encoded body differs")
			}
		})
	}
}

func TestBodyEmptyLayout(t *testing.T) {
	body, _ := savfile.NewBody(nil, nil, nil)
	data, err := encodeBody(body)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := app(int32(12), int32(0), int32(0), int32(0)); !bytes.Equal(data, want) {
		t.Errorf("unexpected encoding %x", data)
	}
}

func TestBodyActorPayload(t *testing.T) {
	data := app(
		int32(0),
		int32(1),
		int32(savfile.KindActor),
		int32(2), "A\x00", int32(2), "B\x00", int32(2), "C\x00",
		int32(1),
		float32(0), float32(0), float32(0), float32(1),
		float32(1), float32(2), float32(3),
		float32(1), float32(1), float32(1),
		int32(0),
		int32(1),
		// size = 4 + 5 + 5 + 3
		int32(17), int32(5), "abcd\x00", int32(5), "efgh\x00", int32(2), []byte{7, 8, 9},
		int32(0),
	)
	binary.LittleEndian.PutUint32(data, uint32(len(data)-4))

	body, warn, err := decodeBody(data)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if warn != nil {
		t.Errorf("unexpected warning: %s", warn)
	}
	h, ok := body.Header(0).(*savfile.ActorHeader)
	if !ok {
		t.Fatalf("expected actor header, got %T", body.Header(0))
	}
	if h.Position != (savfile.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected position %v", h.Position)
	}
	o, ok := body.Object(0).(*savfile.ActorObject)
	if !ok {
		t.Fatalf("expected actor object, got %T", body.Object(0))
	}
	if o.ParentObjectRoot.Value != "abcd" || o.ParentObjectName.Value != "efgh" || o.ComponentCount != 2 {
		t.Errorf("unexpected actor object %+v", o)
	}
	if !bytes.Equal(o.Properties, []byte{7, 8, 9}) {
		t.Errorf("unexpected properties %v", o.Properties)
	}
}

func TestBodyCountMismatch(t *testing.T) {
	body := testBody(t, 3)
	data, err := encodeBody(body)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	// Locate the object count, which follows the header table.
	off := 8
	for _, h := range body.Headers() {
		off += 4
		switch h := h.(type) {
		case *savfile.ComponentHeader:
			off += h.TypePath.EncodedLen() + h.RootObject.EncodedLen() + h.InstanceName.EncodedLen() + h.ParentActorName.EncodedLen()
		case *savfile.ActorHeader:
			off += h.TypePath.EncodedLen() + h.RootObject.EncodedLen() + h.InstanceName.EncodedLen() + 4 + 16 + 12 + 12 + 4
		}
	}
	if n := binary.LittleEndian.Uint32(data[off:]); n != 3 {
		t.Fatalf("object count not found at %d", off)
	}
	binary.LittleEndian.PutUint32(data[off:], 5)

	got, warn, err := decodeBody(data)
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}
	if !errors.Is(warn, ErrCountMismatch) {
		t.Errorf("expected count mismatch warning, got %v", warn)
	}
	var cerr CountMismatchError
	if !errors.As(warn, &cerr) || cerr.Headers != 3 || cerr.Objects != 5 {
		t.Errorf("unexpected warning %v", warn)
	}
	if !got.Partial() {
		t.Fatal("expected partial body")
	}
	if got.Len() != 3 || len(got.Objects()) != 0 || got.DeclaredObjects() != 5 {
		t.Errorf("unexpected partial body: %d headers, %d objects", got.Len(), len(got.Objects()))
	}
	for i := 0; i < 3; i++ {
		if !reflect.DeepEqual(got.Header(i), body.Header(i)) {
			t.Errorf("header %d mismatch", i)
		}
	}

	if _, err := encodeBody(got); !errors.Is(err, ErrPartialBody) {
		t.Errorf("expected ErrPartialBody, got %v", err)
	}
}

func TestBodyEncodeKindMismatch(t *testing.T) {
	body := testBody(t, 3)
	h, _ := testComponent(1)
	body.Headers()[1] = h

	_, err := encodeBody(body)
	var kerr savfile.KindError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected KindError, got %v", err)
	}
	if kerr.Index != 1 || kerr.Header != savfile.KindComponent || kerr.Object != savfile.KindActor {
		t.Errorf("unexpected error %+v", kerr)
	}

	body = testBody(t, 3)
	_, o := testComponent(2)
	body.Objects()[2] = o
	if _, err := encodeBody(body); !errors.As(err, &kerr) || kerr.Index != 2 {
		t.Errorf("expected KindError at index 2, got %v", err)
	}
}

func TestBodyUnknownKind(t *testing.T) {
	data := app(int32(8), int32(1), int32(7))
	_, _, err := decodeBody(data)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	var kerr KindError
	if !errors.As(err, &kerr) || kerr.Tag != 7 || kerr.Index != 0 {
		t.Errorf("unexpected error %v", err)
	}
}

func TestBodyWarnings(t *testing.T) {
	body := testBody(t, 12)
	data, err := encodeBody(body)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	t.Run("size field", func(t *testing.T) {
		bad := append([]byte{}, data...)
		binary.LittleEndian.PutUint32(bad, 1)
		got, warn, err := decodeBody(bad)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !errors.Is(warn, ErrBodySize) {
			t.Errorf("expected ErrBodySize warning, got %v", warn)
		}
		if got.Size != 1 {
			t.Errorf("expected decoded size retained, got %d", got.Size)
		}
		compareBodies(t, body, got)
	})

	t.Run("trailing data", func(t *testing.T) {
		bad := append(append([]byte{}, data...), 1, 2, 3)
		binary.LittleEndian.PutUint32(bad, uint32(len(bad)-4))
		got, warn, err := decodeBody(bad)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !errors.Is(warn, ErrTrailingData) {
			t.Errorf("expected ErrTrailingData warning, got %v", warn)
		}
		compareBodies(t, body, got)
	})
}

func TestBodyTruncated(t *testing.T) {
	body := testBody(t, 20)
	data, err := encodeBody(body)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	for _, n := range []int{0, 2, 6, len(data) / 2, len(data) - 1} {
		_, _, err := decodeBody(data[:n])
		if err == nil {
			t.Errorf("%d: expected error", n)
			continue
		}
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("%d: expected ErrTruncated, got %v", n, err)
		}
		var derr DataError
		if !errors.As(err, &derr) {
			t.Errorf("%d: expected DataError, got %T", n, err)
		}
	}
}

func TestBodyObjectSize(t *testing.T) {
	data := app(
		int32(0),
		int32(1),
		int32(savfile.KindComponent),
		int32(2), "A\x00", int32(2), "B\x00", int32(2), "C\x00", int32(2), "D\x00",
		int32(1),
		int32(-1),
	)
	_, _, err := decodeBody(data)
	if !errors.Is(err, ErrObjectSize) {
		t.Errorf("expected ErrObjectSize, got %v", err)
	}
	var oerr ObjectError
	if !errors.As(err, &oerr) || oerr.Index != 0 || oerr.Name != "C" {
		t.Errorf("unexpected error %v", err)
	}

	binary.LittleEndian.PutUint32(data[len(data)-4:], 1<<30)
	if _, _, err := decodeBody(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}
