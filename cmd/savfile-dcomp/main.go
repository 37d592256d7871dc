// The savfile-dcomp command writes the decompressed body of a save file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/factorysave/savfile/sav"
)

const usage = `usage: savfile-dcomp [-codec NAME] [INPUT] [OUTPUT]

Reads a save file from INPUT, and writes to OUTPUT the body of the file after
its chunks have been decompressed and joined. The header is not written.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

Options:
`

func main() {
	var input io.ReadSeeker
	var output io.Writer = os.Stdout

	codec := flag.String("codec", "zlib", "compressor used by the chunks (zlib, lz4, zstd, lzma)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	c, err := sav.CompressorByName(*codec)
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
		// Chunks are located by seeking, so stdin is read in full.
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("read input: %w", err))
			return
		}
		input = bytes.NewReader(b)
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

	if err := (sav.Decoder{Compressor: c}).Decompress(output, input); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
	}
}
