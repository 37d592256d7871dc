package declare

import (
	"strings"
	"testing"

	"github.com/factorysave/savfile"
)

func TestAppendObjectKindMismatch(t *testing.T) {
	body, _ := savfile.NewBody(nil, nil, nil)
	h, o := Actor("/Game/Foo.Foo_C", "Foo").Declare()
	appendObject(body, h, o)
	if body.Len() != 1 {
		t.Fatalf("unexpected body length (expected 1, got %d)", body.Len())
	}

	defer func() {
		r := recover()
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, "declare: ") {
			t.Errorf("expected declare panic, got %v", r)
		}
		if body.Len() != 1 {
			t.Errorf("body modified by failed append (expected 1, got %d)", body.Len())
		}
	}()
	appendObject(body, h, &savfile.ComponentObject{})
}
