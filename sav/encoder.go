package sav

import (
	"fmt"
	"io"

	"github.com/anaminus/parse"
	"github.com/factorysave/savfile"
	"github.com/factorysave/savfile/errors"
)

// EncoderStats contains statistics generated while encoding.
type EncoderStats struct {
	HeaderSize int64
	Chunks     []ChunkInfo
	// BodySize is the length of the serialized body before compression.
	BodySize int64
	// BodyDigest is the hex-encoded BLAKE2b-256 digest of the serialized
	// body.
	BodyDigest string
}

// Encoder encodes save files.
type Encoder struct {
	// Compressor compresses chunk payloads. If nil, Zlib is used, which is
	// the only compressor the game reads.
	Compressor Compressor

	// BlockSize is the number of uncompressed bytes placed in each chunk. If
	// zero, DefaultBlockSize is used. Chunk boundaries need not match those of
	// the file the body was decoded from.
	BlockSize int

	// If not nil, Stats is filled with statistics as data is encoded.
	Stats *EncoderStats
}

func (e Encoder) compressor() Compressor {
	if e.Compressor == nil {
		return Zlib{}
	}
	return e.Compressor
}

func (e Encoder) blockSize() int {
	if e.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return e.BlockSize
}

// EncodeBody serializes body without compressing it. The size field at the
// start of the result is set to the length of the rest of the result.
func (e Encoder) EncodeBody(body *savfile.Body) (data []byte, err error) {
	if body == nil {
		return nil, errors.New("nil body")
	}
	return encodeBody(body)
}

// WriteChunks compresses data into chunks and writes them to w.
func (e Encoder) WriteChunks(w io.Writer, data []byte) (chunks []ChunkInfo, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	fw := parse.NewBinaryWriter(w)
	chunks, _ = compressChunks(fw, data, e.blockSize(), e.compressor(), 0)
	if n, err := fw.End(); err != nil {
		return chunks, DataError{Offset: n, Cause: err}
	}
	return chunks, nil
}

// Encode writes header followed by the compressed body to w. The body is
// serialized in full before anything is written, because its size field
// depends on its total length.
func (e Encoder) Encode(w io.Writer, header *savfile.Header, body *savfile.Body) (err error) {
	if w == nil {
		return errors.New("nil writer")
	}
	if header == nil {
		return errors.New("nil header")
	}
	if !header.HasCompressedBody() {
		return VersionError{SaveVersion: header.SaveVersion}
	}

	data, err := e.EncodeBody(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	fw := parse.NewBinaryWriter(w)
	if writeHeader(fw, header) {
		_, err := fw.End()
		return fmt.Errorf("encode header: %w", err)
	}

	chunks, _ := compressChunks(fw, data, e.blockSize(), e.compressor(), header.Size())
	if n, err := fw.End(); err != nil {
		return DataError{Offset: n, Cause: err}
	}

	if e.Stats != nil {
		e.Stats.HeaderSize = header.Size()
		e.Stats.Chunks = chunks
		e.Stats.BodySize = int64(len(data))
		e.Stats.BodyDigest = digest(data)
	}
	return nil
}
