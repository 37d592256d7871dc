package sav

import (
	"github.com/anaminus/parse"
	"github.com/factorysave/savfile"
)

// readHeader decodes the fields of a file header in order.
func readHeader(f *parse.BinaryReader, h *savfile.Header) (failed bool) {
	var visibility uint8
	failed = f.Number(&h.SaveHeaderVersion) ||
		f.Number(&h.SaveVersion) ||
		f.Number(&h.BuildVersion) ||
		readString(f, &h.MapName) ||
		readString(f, &h.MapOptions) ||
		readString(f, &h.SessionName) ||
		f.Number(&h.PlayedSeconds) ||
		f.Number(&h.SaveTimestamp) ||
		f.Number(&visibility) ||
		f.Number(&h.EditorObjectVersion) ||
		readString(f, &h.ModMetadata) ||
		f.Number(&h.ModFlags)
	h.SessionVisibility = savfile.Visibility(int8(visibility))
	return failed
}

// writeHeader encodes the fields of a file header in order. The number of
// bytes written equals h.Size().
func writeHeader(f *parse.BinaryWriter, h *savfile.Header) (failed bool) {
	return f.Number(h.SaveHeaderVersion) ||
		f.Number(h.SaveVersion) ||
		f.Number(h.BuildVersion) ||
		writeString(f, h.MapName) ||
		writeString(f, h.MapOptions) ||
		writeString(f, h.SessionName) ||
		f.Number(h.PlayedSeconds) ||
		f.Number(h.SaveTimestamp) ||
		f.Number(uint8(h.SessionVisibility)) ||
		f.Number(h.EditorObjectVersion) ||
		writeString(f, h.ModMetadata) ||
		f.Number(h.ModFlags)
}
