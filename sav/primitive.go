package sav

import (
	"math"

	"github.com/anaminus/parse"
	"github.com/factorysave/savfile"
)

// All scalars are little-endian, which is the byte order used by
// parse.BinaryReader and parse.BinaryWriter.

func readString(f *parse.BinaryReader, data *savfile.String) (failed bool) {
	if f.Err() != nil {
		return true
	}

	var length int32
	if f.Number(&length) {
		return true
	}

	n := int64(length)
	if n < 0 {
		n = -n
	}
	if n > savfile.MaxStringLen {
		f.Add(0, StringSizeError{Length: length, Max: savfile.MaxStringLen})
		return true
	}

	raw := make([]byte, n)
	if f.Bytes(raw) {
		return true
	}

	*data = savfile.StringFromBytes(length, raw)
	return false
}

// writeString writes the text of data followed by a NUL. The length field is
// always positive, regardless of the sign it was decoded with.
func writeString(f *parse.BinaryWriter, data savfile.String) (failed bool) {
	if f.Err() != nil {
		return true
	}

	if f.Number(int32(len(data.Value) + 1)) {
		return true
	}

	if f.Bytes([]byte(data.Value)) {
		return true
	}

	return f.Number(uint8(0))
}

func readFloat(f *parse.BinaryReader, data *float32) (failed bool) {
	var bits uint32
	if f.Number(&bits) {
		return true
	}
	*data = math.Float32frombits(bits)
	return false
}

func writeFloat(f *parse.BinaryWriter, data float32) (failed bool) {
	return f.Number(math.Float32bits(data))
}

func readVector3(f *parse.BinaryReader, data *savfile.Vector3) (failed bool) {
	return readFloat(f, &data.X) ||
		readFloat(f, &data.Y) ||
		readFloat(f, &data.Z)
}

func writeVector3(f *parse.BinaryWriter, data savfile.Vector3) (failed bool) {
	return writeFloat(f, data.X) ||
		writeFloat(f, data.Y) ||
		writeFloat(f, data.Z)
}

func readQuat(f *parse.BinaryReader, data *savfile.Quat) (failed bool) {
	return readFloat(f, &data.X) ||
		readFloat(f, &data.Y) ||
		readFloat(f, &data.Z) ||
		readFloat(f, &data.W)
}

func writeQuat(f *parse.BinaryWriter, data savfile.Quat) (failed bool) {
	return writeFloat(f, data.X) ||
		writeFloat(f, data.Y) ||
		writeFloat(f, data.Z) ||
		writeFloat(f, data.W)
}
