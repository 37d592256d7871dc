// The savfile-resave command decodes a save file and encodes it again.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/factorysave/savfile/errors"
	"github.com/factorysave/savfile/sav"
)

const usage = `usage: savfile-resave [-in CODEC] [-out CODEC] [-block SIZE] [-strict] [INPUT] [OUTPUT]

Reads a save file from INPUT, and writes to OUTPUT the same file, with the body
re-encoded and recompressed. Object payloads are copied unchanged.

Only zlib files can be loaded by the game. Other codecs are useful for local
working copies, which must be read back with the same codec.

With -strict, nothing is written if decoding produced any warning other than
a mismatched body size, which is recomputed when encoding.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

Options:
`

func main() {
	var input io.ReadSeeker
	var output io.Writer = os.Stdout

	inCodec := flag.String("in", "zlib", "compressor used by the input chunks")
	outCodec := flag.String("out", "zlib", "compressor used by the output chunks")
	strict := flag.Bool("strict", false, "fail on decode warnings")
	block := flag.Int("block", sav.DefaultBlockSize, "uncompressed size of each output chunk")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	dc, err := sav.CompressorByName(*inCodec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	ec, err := sav.CompressorByName(*outCodec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			return
		}
		input = in
		defer in.Close()
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("read input: %w", err))
			return
		}
		input = bytes.NewReader(b)
	}

	header, body, warn, err := sav.Decoder{Compressor: dc}.Decode(input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
		return
	}
	if *strict {
		if warn := errors.List(warn).Without(sav.ErrBodySize).Return(); warn != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("strict: %w", warn))
			return
		}
	}

	// Encode into memory first so that a failure leaves no partial output.
	var buf bytes.Buffer
	if err := (sav.Encoder{Compressor: ec, BlockSize: *block}).Encode(&buf, header, body); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode error: %w", err))
		return
	}

	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			return
		}
		defer out.Close()
		defer func() {
			err := out.Sync()
			if err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
				return
			}
		}()
		output = out
	}
	if _, err := buf.WriteTo(output); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
	}
}
