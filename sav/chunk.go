package sav

import (
	"bytes"
	"errors"
	"io"

	"github.com/anaminus/parse"
)

// ChunkHeader precedes the compressed payload of each chunk. In a file, each
// field is followed by four bytes of zero padding.
//
// The sizes are stored twice. Both copies are retained as decoded; the encoder
// always writes equal pairs.
type ChunkHeader struct {
	Magic             uint32
	MaxChunkSize      int32
	CompressedSize    int32
	UncompressedSize  int32
	CompressedSize2   int32
	UncompressedSize2 int32
}

// newChunkHeader returns the header written for a chunk with the given
// payload sizes.
func newChunkHeader(compressed, uncompressed int) ChunkHeader {
	return ChunkHeader{
		Magic:             chunkMagic,
		MaxChunkSize:      maxChunkSize,
		CompressedSize:    int32(compressed),
		UncompressedSize:  int32(uncompressed),
		CompressedSize2:   int32(compressed),
		UncompressedSize2: int32(uncompressed),
	}
}

// readField reads a 32-bit field followed by its padding.
func readField(f *parse.BinaryReader, data interface{}) (failed bool) {
	var pad uint32
	return f.Number(data) || f.Number(&pad)
}

func writeField(f *parse.BinaryWriter, data interface{}) (failed bool) {
	return f.Number(data) || f.Number(uint32(0))
}

func (h *ChunkHeader) read(f *parse.BinaryReader) (failed bool) {
	return readField(f, &h.Magic) ||
		readField(f, &h.MaxChunkSize) ||
		readField(f, &h.CompressedSize) ||
		readField(f, &h.UncompressedSize) ||
		readField(f, &h.CompressedSize2) ||
		readField(f, &h.UncompressedSize2)
}

func (h ChunkHeader) write(f *parse.BinaryWriter) (failed bool) {
	return writeField(f, h.Magic) ||
		writeField(f, h.MaxChunkSize) ||
		writeField(f, h.CompressedSize) ||
		writeField(f, h.UncompressedSize) ||
		writeField(f, h.CompressedSize2) ||
		writeField(f, h.UncompressedSize2)
}

// tryReadChunkHeader reads a chunk header from r. If r ends before a complete
// header, or the header does not begin with the chunk signature, ok is false
// and err is nil. Other read errors are returned.
func tryReadChunkHeader(r io.Reader) (h ChunkHeader, ok bool, err error) {
	var b [chunkHeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, false, nil
		}
		return h, false, err
	}
	if h.read(parse.NewBinaryReader(bytes.NewReader(b[:]))) {
		return h, false, nil
	}
	if h.Magic != chunkMagic {
		return h, false, nil
	}
	return h, true, nil
}

////////////////////////////////////////////////////////////////

// ChunkInfo locates the payload of a chunk within a file.
type ChunkInfo struct {
	// Offset is the file offset of the compressed payload, immediately after
	// the chunk header.
	Offset           int64
	CompressedSize   int64
	UncompressedSize int64
}

// HeaderOffset returns the file offset of the chunk's header.
func (c ChunkInfo) HeaderOffset() int64 {
	return c.Offset - chunkHeaderSize
}

// scanChunks walks the chunk headers of rs, beginning at offset. Each header
// is located by skipping the payload of the previous chunk. Scanning stops
// without error at the end of the stream or at the first header that lacks
// the chunk signature.
func scanChunks(rs io.ReadSeeker, offset int64) (chunks []ChunkInfo, err error) {
	pos := offset
	for i := 0; ; i++ {
		if _, err := rs.Seek(pos, io.SeekStart); err != nil {
			return chunks, ChunkError{Index: i, Offset: pos, Cause: err}
		}
		h, ok, err := tryReadChunkHeader(rs)
		if err != nil {
			return chunks, ChunkError{Index: i, Offset: pos, Cause: err}
		}
		if !ok {
			return chunks, nil
		}
		if h.CompressedSize < 0 || h.UncompressedSize < 0 {
			return chunks, ChunkError{Index: i, Offset: pos, Cause: ChunkSizeError{
				Compressed:   h.CompressedSize,
				Uncompressed: h.UncompressedSize,
			}}
		}
		chunks = append(chunks, ChunkInfo{
			Offset:           pos + chunkHeaderSize,
			CompressedSize:   int64(h.CompressedSize),
			UncompressedSize: int64(h.UncompressedSize),
		})
		pos += chunkHeaderSize + int64(h.CompressedSize)
	}
}

// decompressChunks reads and decompresses each chunk in order, returning the
// concatenated result. Unlike scanning, a chunk header without the signature
// is an error here. No chunk may declare a size above max.
func decompressChunks(rs io.ReadSeeker, chunks []ChunkInfo, c Compressor, max int64) (data []byte, err error) {
	for i, chunk := range chunks {
		if chunk.UncompressedSize > max || chunk.CompressedSize > max {
			return nil, ChunkError{Index: i, Offset: chunk.HeaderOffset(), Cause: ChunkSizeError{
				Compressed:   int32(chunk.CompressedSize),
				Uncompressed: int32(chunk.UncompressedSize),
				Max:          max,
			}}
		}
	}

	// Each chunk is inflated into its own buffer, and only the inflated bytes
	// are kept.
	for i, chunk := range chunks {
		if _, err := rs.Seek(chunk.HeaderOffset(), io.SeekStart); err != nil {
			return nil, ChunkError{Index: i, Offset: chunk.HeaderOffset(), Cause: err}
		}

		fr := parse.NewBinaryReader(rs)
		var h ChunkHeader
		if h.read(fr) {
			return nil, ChunkError{Index: i, Offset: chunk.HeaderOffset(), Cause: truncated(fr.Err())}
		}
		if h.Magic != chunkMagic {
			return nil, ChunkError{Index: i, Offset: chunk.HeaderOffset(), Cause: MagicError{Got: h.Magic}}
		}

		payload := make([]byte, chunk.CompressedSize)
		if fr.Bytes(payload) {
			return nil, ChunkError{Index: i, Offset: chunk.Offset, Cause: truncated(fr.Err())}
		}

		out, err := c.Decompress(make([]byte, chunk.UncompressedSize), payload)
		if err != nil {
			return nil, ChunkError{Index: i, Offset: chunk.Offset, Cause: CompressionError{
				Codec:   c.Name(),
				Inflate: true,
				Cause:   err,
			}}
		}
		data = append(data, out...)
	}
	return data, nil
}

// compressChunks splits data into blocks of blockSize bytes, the last of which
// may be shorter, and writes each as an independently compressed chunk. base
// is the file offset at which writing begins, used to fill in the returned
// chunk locations.
func compressChunks(fw *parse.BinaryWriter, data []byte, blockSize int, c Compressor, base int64) (chunks []ChunkInfo, failed bool) {
	pos := base
	for off := 0; off < len(data); off += blockSize {
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		block := data[off:end]

		payload, err := c.Compress(block)
		if err != nil {
			fw.Add(0, CompressionError{Codec: c.Name(), Cause: err})
			return chunks, true
		}

		if newChunkHeader(len(payload), len(block)).write(fw) {
			return chunks, true
		}
		if fw.Bytes(payload) {
			return chunks, true
		}

		chunks = append(chunks, ChunkInfo{
			Offset:           pos + chunkHeaderSize,
			CompressedSize:   int64(len(payload)),
			UncompressedSize: int64(len(block)),
		})
		pos += chunkHeaderSize + int64(len(payload))
	}
	return chunks, false
}
