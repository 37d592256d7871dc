// The savfile-stat command displays stats for a save file.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/factorysave/savfile"
	"github.com/factorysave/savfile/errors"
	"github.com/factorysave/savfile/sav"
)

const usage = `usage: savfile-stat [-verify] [-codec NAME] [INPUT] [OUTPUT]

Reads a save file from INPUT, and writes to OUTPUT statistics for the file.

With -verify, the decoded body is encoded again, and the digest of the result
is compared with the digest of the decompressed body.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

Options:
`

type ObjectLen struct {
	TypePath string
	Name     string
	Length   int
}

func (o ObjectLen) String() string {
	return fmt.Sprintf("%s:%s(%d)", o.TypePath, o.Name, o.Length)
}

type ObjectLenList []ObjectLen

func (l ObjectLenList) MarshalJSON() ([]byte, error) {
	list := make([]ObjectLen, len(l))
	copy(list, l)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Length > list[j].Length
	})
	if len(list) > 20 {
		list = list[:20]
	}
	return json.Marshal(list)
}

type Header struct {
	SaveHeaderVersion int32
	SaveVersion       int32
	BuildVersion      int32
	MapName           string
	SessionName       string
	PlayTime          string
	SaveTime          time.Time
	Visibility        string
	Mods              bool
}

type Verify struct {
	// Digest of the body produced by encoding the decoded body.
	BodyDigest string
	// Whether BodyDigest matches the digest of the decompressed body.
	Match bool
}

type Stats struct {
	Header Header

	// Binary format data.
	Format sav.DecoderStats

	// Number of objects per type path.
	TypeCount map[string]int `json:",omitempty"`

	// Number of actors per level, taken from the root object path.
	LevelCount map[string]int `json:",omitempty"`

	LargestObjects ObjectLenList `json:",omitempty"`

	Verify *Verify `json:",omitempty"`

	// Non-fatal problems found while decoding.
	Warnings []string `json:",omitempty"`
}

func (s *Stats) FillHeader(h *savfile.Header) {
	if h == nil {
		return
	}
	s.Header = Header{
		SaveHeaderVersion: h.SaveHeaderVersion,
		SaveVersion:       h.SaveVersion,
		BuildVersion:      h.BuildVersion,
		MapName:           h.MapName.Value,
		SessionName:       h.SessionName.Value,
		PlayTime:          h.PlayTime().String(),
		SaveTime:          h.Timestamp(),
		Visibility:        h.SessionVisibility.String(),
		Mods:              h.ModFlags != 0,
	}
}

func (s *Stats) Fill(body *savfile.Body) {
	if body == nil {
		return
	}

	s.TypeCount = map[string]int{}
	for _, h := range body.Headers() {
		switch h := h.(type) {
		case *savfile.ComponentHeader:
			s.TypeCount[h.TypePath.Value]++
		case *savfile.ActorHeader:
			s.TypeCount[h.TypePath.Value]++
		}
	}

	s.LevelCount = map[string]int{}
	for _, h := range body.Actors() {
		s.LevelCount[h.RootObject.Value]++
	}

	s.LargestObjects = ObjectLenList{}
	for i, o := range body.Objects() {
		var path string
		switch h := body.Header(i).(type) {
		case *savfile.ComponentHeader:
			path = h.TypePath.Value
		case *savfile.ActorHeader:
			path = h.TypePath.Value
		}
		s.LargestObjects = append(s.LargestObjects, ObjectLen{
			TypePath: path,
			Name:     body.Header(i).Name(),
			Length:   len(o.Payload()),
		})
	}
}

func main() {
	var input io.ReadSeeker
	var output io.Writer = os.Stdout

	verify := flag.Bool("verify", false, "re-encode the body and compare digests")
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
		defer func() {
			err := out.Sync()
			if err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
				return
			}
		}()
		output = out
	}

	var stats Stats
	header, body, warn, err := sav.Decoder{Compressor: c, Stats: &stats.Format}.Decode(input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
	}

	for _, w := range errors.List(warn) {
		stats.Warnings = append(stats.Warnings, w.Error())
	}
	stats.FillHeader(header)
	stats.Fill(body)

	if *verify && body != nil {
		var es sav.EncoderStats
		if err := (sav.Encoder{Stats: &es}).Encode(io.Discard, header, body); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("verify error: %w", err))
		} else {
			stats.Verify = &Verify{
				BodyDigest: es.BodyDigest,
				Match:      es.BodyDigest == stats.Format.BodyDigest,
			}
		}
	}

	je := json.NewEncoder(output)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(stats); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
	}
}
