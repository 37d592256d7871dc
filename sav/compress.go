package sav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bkaradzic/go-lz4"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"
)

// Compressor compresses the payload of individual chunks. Each chunk is
// compressed independently of the others.
//
// The game reads only Zlib payloads. The other compressors produce the same
// chunk framing with a different payload encoding, which is useful for local
// working copies; such files must be decoded with the same compressor.
type Compressor interface {
	// Name returns a short name identifying the compressor.
	Name() string

	// Compress returns src compressed as a single independent stream.
	Compress(src []byte) ([]byte, error)

	// Decompress decompresses src into dst. Decompression stops once dst is
	// full or src is exhausted, whichever happens first. Returns the filled
	// portion of dst.
	Decompress(dst, src []byte) ([]byte, error)
}

// fill reads from r into p until p is full or r has no more data. A stream
// that ends early without its terminator is treated as exhausted input, not
// as an error.
func fill(r io.Reader, p []byte) (n int, err error) {
	for n < len(p) {
		var m int
		m, err = r.Read(p[n:])
		n += m
		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			return n, nil
		case err != nil:
			return n, err
		case m == 0:
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

////////////////////////////////////////////////////////////////

// Zlib compresses chunks with zlib, which is the format used by the game.
type Zlib struct {
	// Level is the zlib compression level. Zero selects the default level.
	Level int
}

func (Zlib) Name() string {
	return "zlib"
}

func (c Zlib) Compress(src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Zlib) Decompress(dst, src []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	n, err := fill(zr, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

////////////////////////////////////////////////////////////////

// LZ4 compresses chunks with LZ4 blocks. Each payload is prefixed with its
// uncompressed length.
type LZ4 struct{}

func (LZ4) Name() string {
	return "lz4"
}

func (LZ4) Compress(src []byte) ([]byte, error) {
	return lz4.Encode(nil, src)
}

func (LZ4) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, io.ErrUnexpectedEOF
	}
	if n := binary.LittleEndian.Uint32(src); int64(n) > int64(len(dst)) {
		return nil, fmt.Errorf("payload length %d exceeds chunk size %d", n, len(dst))
	}
	out, err := lz4.Decode(dst, src)
	if err != nil {
		return nil, err
	}
	return out, nil
}

////////////////////////////////////////////////////////////////

var zstdEncoder struct {
	once sync.Once
	enc  *zstd.Encoder
	err  error
}

// Zstd compresses chunks with Zstandard.
type Zstd struct{}

func (Zstd) Name() string {
	return "zstd"
}

func (Zstd) Compress(src []byte) ([]byte, error) {
	zstdEncoder.once.Do(func() {
		zstdEncoder.enc, zstdEncoder.err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
	})
	if zstdEncoder.err != nil {
		return nil, zstdEncoder.err
	}
	return zstdEncoder.enc.EncodeAll(src, nil), nil
}

func (Zstd) Decompress(dst, src []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(src), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	n, err := fill(zr, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

////////////////////////////////////////////////////////////////

// LZMA compresses chunks with classic LZMA streams, terminated by an
// end-of-stream marker.
type LZMA struct{}

func (LZMA) Name() string {
	return "lzma"
}

func (LZMA) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	lw, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := lw.Write(src); err != nil {
		return nil, err
	}
	if err := lw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZMA) Decompress(dst, src []byte) ([]byte, error) {
	lr, err := lzma.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	n, err := fill(lr, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

////////////////////////////////////////////////////////////////

// CompressorByName returns the compressor with the given name, as returned by
// Compressor.Name.
func CompressorByName(name string) (Compressor, error) {
	switch name {
	case "", "zlib":
		return Zlib{}, nil
	case "lz4":
		return LZ4{}, nil
	case "zstd":
		return Zstd{}, nil
	case "lzma":
		return LZMA{}, nil
	}
	return nil, errors.New("unknown compressor " + name)
}
