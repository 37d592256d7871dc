// The savfile-dump command displays the structure of a save file.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/factorysave/savfile/sav"
)

const usage = `usage: savfile-dump [-objects] [-payload N] [-json] [-codec NAME] [INPUT] [OUTPUT]

Reads a save file from INPUT, and writes to OUTPUT a readable representation
of its header and chunks. With -objects, the body is decoded, and each object
header, object, and reference is included.

With -json, the body is instead written as a JSON object, with property
payloads encoded as base64.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

Options:
`

func main() {
	var input io.ReadSeeker
	var output io.Writer = os.Stdout

	var opts sav.DumpOptions
	flag.BoolVar(&opts.Objects, "objects", false, "decode and display the body")
	flag.IntVar(&opts.PayloadBytes, "payload", 0, "number of property bytes to display per object")
	asJSON := flag.Bool("json", false, "write the decoded body as JSON")
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
		output = out
	}

	if *asJSON {
		_, body, warn, err := sav.Decoder{Compressor: c}.Decode(input)
		if warn != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
			return
		}
		je := json.NewEncoder(output)
		je.SetEscapeHTML(false)
		je.SetIndent("", "\t")
		if err := je.Encode(body); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
		}
		return
	}

	warn, err := sav.Decoder{Compressor: c}.Dump(output, input, opts)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
	}
}
