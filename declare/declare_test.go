package declare_test

import (
	"fmt"
	"testing"

	"github.com/factorysave/savfile"
	. "github.com/factorysave/savfile/declare"
)

func Example() {
	body := Body{
		Actor("/Game/Foo.Foo_C", "Persistent_Level:PersistentLevel.Foo",
			Position{X: 1, Y: 2, Z: 3},
			Placed(true),
			Properties("None\x00"),
			Component("/Script/FactoryGame.FGInventoryComponent", "Persistent_Level:PersistentLevel.Foo.Inventory",
				Properties("None\x00"),
			),
		),
		Reference("Persistent_Level", "Persistent_Level:PersistentLevel.Foo"),
	}.Declare()
	for _, h := range body.Headers() {
		fmt.Println(h.Kind(), h.Name())
	}
	fmt.Println(len(body.References))
	// Output:
	// Actor Persistent_Level:PersistentLevel.Foo
	// Component Persistent_Level:PersistentLevel.Foo.Inventory
	// 1
}

func TestDeclareActor(t *testing.T) {
	h, o := Actor("/Game/Foo.Foo_C", "Foo",
		Level("Other_Level"),
		Position{X: 1, Y: 2, Z: 3},
		Parent{Root: "Persistent_Level", Name: "Owner"},
		Component("/Script/Bar", "Bar"),
		Component("/Script/Baz", "Baz"),
	).Declare()

	if h.RootObject.Value != "Other_Level" {
		t.Errorf("unexpected root object %q", h.RootObject.Value)
	}
	if h.NeedTransform != 1 || h.Position != (savfile.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected transform %+v", h)
	}
	if h.Rotation != (savfile.Quat{W: 1}) || h.Scale != (savfile.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected identity rotation and unit scale, got %v %v", h.Rotation, h.Scale)
	}
	if o.ComponentCount != 2 {
		t.Errorf("unexpected component count %d", o.ComponentCount)
	}
	if o.ParentObjectName.Value != "Owner" {
		t.Errorf("unexpected parent %q", o.ParentObjectName.Value)
	}

	h, _ = Actor("/Game/Foo.Foo_C", "Foo").Declare()
	if h.NeedTransform != 0 || h.RootObject.Value != DefaultLevel {
		t.Errorf("unexpected defaults %+v", h)
	}
}

func TestDeclareBody(t *testing.T) {
	body := Body{
		Component("/Script/Loose", "Loose", ParentActor("Elsewhere")),
		Actor("/Game/Foo.Foo_C", "Foo",
			Component("/Script/Bar", "Bar", Properties{1, 2}),
		),
	}.Declare()

	if body.Len() != 3 || body.Partial() {
		t.Fatalf("unexpected body length %d", body.Len())
	}
	loose := body.Header(0).(*savfile.ComponentHeader)
	if loose.ParentActorName.Value != "Elsewhere" {
		t.Errorf("unexpected parent %q", loose.ParentActorName.Value)
	}
	bar := body.Header(2).(*savfile.ComponentHeader)
	if bar.ParentActorName.Value != "Foo" {
		t.Errorf("expected component parented to actor, got %q", bar.ParentActorName.Value)
	}
	if p := body.Object(2).Payload(); len(p) != 2 {
		t.Errorf("unexpected payload %v", p)
	}
}
