package savfile_test

import (
	"testing"
	"time"

	"github.com/factorysave/savfile"
)

func TestNewString(t *testing.T) {
	s := savfile.NewString("Persistent_Level")
	if s.Size != 17 {
		t.Errorf("unexpected size (expected 17, got %d)", s.Size)
	}
	if len(s.Raw) != 17 || s.Raw[16] != 0 {
		t.Errorf("expected NUL-terminated raw bytes, got %q", s.Raw)
	}
	if s.Wide() {
		t.Error("expected plain string")
	}
	if s.EncodedLen() != 4+17 {
		t.Errorf("unexpected encoded length %d", s.EncodedLen())
	}
	if s.String() != "Persistent_Level" {
		t.Errorf("unexpected String result %q", s.String())
	}
}

func TestStringFromBytes(t *testing.T) {
	s := savfile.StringFromBytes(6, []byte("ab\x00cd\x00"))
	if s.Value != "ab" {
		t.Errorf("expected value cut at first NUL, got %q", s.Value)
	}
	if s.Len() != 6 {
		t.Errorf("unexpected Len %d", s.Len())
	}
	if s.EncodedLen() != 4+3 {
		t.Errorf("unexpected encoded length %d", s.EncodedLen())
	}

	w := savfile.StringFromBytes(-4, []byte{'h', 0, 'i', 0})
	if !w.Wide() {
		t.Error("expected wide string")
	}
	if w.Len() != 4 {
		t.Errorf("unexpected Len %d", w.Len())
	}

	e := savfile.StringFromBytes(0, nil)
	if e.Value != "" || e.Len() != 0 {
		t.Errorf("unexpected empty string %+v", e)
	}
}

func TestVisibility_String(t *testing.T) {
	if savfile.VisibilityPrivate.String() != "Private" {
		t.Error("unexpected result from String")
	}
	if savfile.VisibilityFriendsOnly.String() != "FriendsOnly" {
		t.Error("unexpected result from String")
	}
	if savfile.Visibility(7).String() != "Visibility(7)" {
		t.Error("unexpected result from String")
	}
}

func TestHeaderSize(t *testing.T) {
	h := savfile.Header{}
	// 1 byte, 6 int32, 1 int64, and 4 empty strings of 5 bytes each.
	if n := h.Size(); n != 1+24+8+4*5 {
		t.Errorf("unexpected size of empty header %d", n)
	}

	h.MapName = savfile.NewString("Persistent_Level")
	h.SessionName = savfile.NewString("x")
	if n := h.Size(); n != 1+24+8+4*5+16+1 {
		t.Errorf("unexpected size %d", n)
	}
}

func TestHeaderCompressedBody(t *testing.T) {
	h := savfile.Header{SaveVersion: 20}
	if h.HasCompressedBody() {
		t.Error("version 20 should not have compressed body")
	}
	h.SaveVersion = savfile.CompressedBodyVersion
	if !h.HasCompressedBody() {
		t.Error("version 21 should have compressed body")
	}
}

func TestHeaderTimestamp(t *testing.T) {
	var h savfile.Header
	h.SaveTimestamp = 621355968000000000
	if ts := h.Timestamp(); !ts.Equal(time.Unix(0, 0)) {
		t.Errorf("expected unix epoch, got %s", ts)
	}

	want := time.Date(2021, 6, 15, 12, 30, 45, 123456700, time.UTC)
	h.SetTimestamp(want)
	if got := h.Timestamp(); !got.Equal(want) {
		t.Errorf("timestamp mismatch (expected %s, got %s)", want, got)
	}

	h.PlayedSeconds = 3661
	if d := h.PlayTime(); d != time.Hour+time.Minute+time.Second {
		t.Errorf("unexpected play time %s", d)
	}
}
