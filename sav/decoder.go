package sav

import (
	"encoding/hex"
	"io"

	"github.com/anaminus/parse"
	"github.com/factorysave/savfile"
	"github.com/factorysave/savfile/errors"
	"golang.org/x/crypto/blake2b"
)

// File is a save file whose header has been decoded and whose chunks have been
// located, but whose body has not been read.
type File struct {
	Header savfile.Header

	// BodyOffset is the offset of the first chunk header, relative to the
	// start of the file.
	BodyOffset int64

	// Chunks locates each chunk of the body, in file order.
	Chunks []ChunkInfo
}

// UncompressedSize returns the total decompressed size of the body as
// declared by the chunk headers.
func (f *File) UncompressedSize() (n int64) {
	for _, c := range f.Chunks {
		n += c.UncompressedSize
	}
	return n
}

// CompressedSize returns the total size of the chunk payloads.
func (f *File) CompressedSize() (n int64) {
	for _, c := range f.Chunks {
		n += c.CompressedSize
	}
	return n
}

// DecoderStats contains statistics generated while decoding.
type DecoderStats struct {
	HeaderSize       int64
	ChunkCount       int
	CompressedSize   int64
	UncompressedSize int64

	ComponentCount int
	ActorCount     int
	ReferenceCount int
	// PropertyBytes is the total size of the undecoded property payloads.
	PropertyBytes int64
	// Partial is true if the objects could not be paired with headers.
	Partial bool

	// BodyDigest is the hex-encoded BLAKE2b-256 digest of the decompressed
	// body.
	BodyDigest string
}

func (s *DecoderStats) fillFile(f *File) {
	s.HeaderSize = f.BodyOffset
	s.ChunkCount = len(f.Chunks)
	s.CompressedSize = f.CompressedSize()
	s.UncompressedSize = f.UncompressedSize()
}

func (s *DecoderStats) fillBody(data []byte, body *savfile.Body) {
	s.BodyDigest = digest(data)
	if body == nil {
		return
	}
	s.Partial = body.Partial()
	s.ComponentCount, s.ActorCount = 0, 0
	for _, h := range body.Headers() {
		switch h.Kind() {
		case savfile.KindComponent:
			s.ComponentCount++
		case savfile.KindActor:
			s.ActorCount++
		}
	}
	s.ReferenceCount = len(body.References)
	s.PropertyBytes = 0
	for _, o := range body.Objects() {
		s.PropertyBytes += int64(len(o.Payload()))
	}
}

// digest returns the hex-encoded BLAKE2b-256 digest of data.
func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decoder decodes save files.
type Decoder struct {
	// Compressor decompresses chunk payloads. If nil, Zlib is used.
	Compressor Compressor

	// MaxChunkSize is the largest uncompressed or compressed size a chunk may
	// declare. Larger chunks are rejected before any memory is allocated for
	// them. If zero, DefaultMaxChunkSize is used.
	MaxChunkSize int64

	// If not nil, Stats is filled with statistics as data is decoded.
	Stats *DecoderStats
}

func (d Decoder) compressor() Compressor {
	if d.Compressor == nil {
		return Zlib{}
	}
	return d.Compressor
}

func (d Decoder) maxChunkSize() int64 {
	if d.MaxChunkSize <= 0 {
		return DefaultMaxChunkSize
	}
	return d.MaxChunkSize
}

// Load reads the header from the start of rs and locates the chunks that
// follow it. The body is not decompressed.
func (d Decoder) Load(rs io.ReadSeeker) (file *File, err error) {
	if rs == nil {
		return nil, errors.New("nil reader")
	}
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	file = new(File)
	fr := parse.NewBinaryReader(rs)
	if readHeader(fr, &file.Header) {
		return nil, DataError{Offset: start + fr.N(), Cause: truncated(fr.Err())}
	}
	if !file.Header.HasCompressedBody() {
		return nil, VersionError{SaveVersion: file.Header.SaveVersion}
	}
	file.BodyOffset = start + fr.N()

	if file.Chunks, err = scanChunks(rs, file.BodyOffset); err != nil {
		return nil, err
	}
	if d.Stats != nil {
		d.Stats.fillFile(file)
	}
	return file, nil
}

// DecompressChunks reads and decompresses the chunks of file from rs,
// returning the concatenated body.
func (d Decoder) DecompressChunks(rs io.ReadSeeker, file *File) (data []byte, err error) {
	if rs == nil {
		return nil, errors.New("nil reader")
	}
	return decompressChunks(rs, file.Chunks, d.compressor(), d.maxChunkSize())
}

// DecodeBody parses a decompressed body.
func (d Decoder) DecodeBody(data []byte) (body *savfile.Body, warn, err error) {
	body, warn, err = decodeBody(data)
	if d.Stats != nil {
		d.Stats.fillBody(data, body)
	}
	return body, warn, err
}

// Decode reads an entire save file from rs.
func (d Decoder) Decode(rs io.ReadSeeker) (header *savfile.Header, body *savfile.Body, warn, err error) {
	file, err := d.Load(rs)
	if err != nil {
		return nil, nil, nil, err
	}
	data, err := d.DecompressChunks(rs, file)
	if err != nil {
		return &file.Header, nil, nil, err
	}
	body, warn, err = d.DecodeBody(data)
	if err != nil {
		return &file.Header, nil, warn, err
	}
	return &file.Header, body, warn, nil
}

// Decompress writes to w the decompressed body of the save file read from rs.
func (d Decoder) Decompress(w io.Writer, rs io.ReadSeeker) (err error) {
	if w == nil {
		return errors.New("nil writer")
	}
	file, err := d.Load(rs)
	if err != nil {
		return err
	}
	data, err := d.DecompressChunks(rs, file)
	if err != nil {
		return err
	}
	if d.Stats != nil {
		d.Stats.fillBody(data, nil)
	}
	_, err = w.Write(data)
	return err
}
