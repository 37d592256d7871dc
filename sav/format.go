// Package sav implements a decoder and encoder for the binary save file format
// of a factory game.
//
// A file begins with a header of scalar metadata. The rest of the file is a
// sequence of chunks, each a fixed 48-byte chunk header followed by a zlib
// stream. Decompressed and concatenated, the chunks form the body: a table of
// tagged object headers, a parallel table of object bodies, and a table of
// object references.
//
// Decoding is split into stages so that callers pay only for what they use.
// Decoder.Load reads the header and indexes the chunks. DecompressChunks
// inflates the body, and DecodeBody parses it. Decoder.Decode runs all
// three. Encoder.Encode performs the inverse in a single call.
//
// Fatal problems are returned as errors. Problems that still allow a usable
// result, such as an object count that disagrees with the header count, are
// returned separately as warnings.
package sav

// chunkMagic is the signature at the start of every chunk header.
const chunkMagic uint32 = 0x9E2A83C1

// chunkHeaderSize is the encoded size of a chunk header.
const chunkHeaderSize = 48

// DefaultBlockSize is the number of uncompressed bytes the encoder places in
// each chunk.
const DefaultBlockSize = 64 * 1024

// maxChunkSize is the value the encoder writes into the MaxChunkSize field
// of each chunk header.
const maxChunkSize = 128 * 1024

// DefaultMaxChunkSize is the largest uncompressed chunk the decoder will
// allocate when Decoder.MaxChunkSize is zero.
const DefaultMaxChunkSize = 16 * 1024 * 1024
