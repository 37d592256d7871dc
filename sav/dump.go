package sav

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode"

	"github.com/factorysave/savfile"
	"github.com/factorysave/savfile/errors"
)

// DumpOptions controls the output of Decoder.Dump.
type DumpOptions struct {
	// Objects includes the object and reference tables.
	Objects bool
	// PayloadBytes is the number of property bytes shown for each object.
	// Zero hides payloads.
	PayloadBytes int
}

// Dump writes to w a readable representation of the save file decoded from
// rs. The body is decompressed and decoded only if opts.Objects is set.
func (d Decoder) Dump(w io.Writer, rs io.ReadSeeker, opts DumpOptions) (warn, err error) {
	if rs == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	file, err := d.Load(rs)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)
	dumpHeader(bw, &file.Header)
	dumpChunks(bw, file)

	if opts.Objects {
		data, err := d.DecompressChunks(rs, file)
		if err != nil {
			bw.Flush()
			return nil, err
		}
		body, ws, err := d.DecodeBody(data)
		warn = errors.Union(warn, ws)
		if err != nil {
			bw.Flush()
			return warn, err
		}
		dumpBody(bw, body, opts)
	}
	bw.WriteByte('\n')

	return warn, bw.Flush()
}

func dumpHeader(w *bufio.Writer, h *savfile.Header) {
	fmt.Fprintf(w, "SaveHeaderVersion: %d", h.SaveHeaderVersion)
	fmt.Fprintf(w, "\nSaveVersion: %d", h.SaveVersion)
	fmt.Fprintf(w, "\nBuildVersion: %d", h.BuildVersion)
	w.WriteString("\nMapName: ")
	dumpString(w, 0, h.MapName)
	w.WriteString("\nMapOptions: ")
	dumpString(w, 0, h.MapOptions)
	w.WriteString("\nSessionName: ")
	dumpString(w, 0, h.SessionName)
	fmt.Fprintf(w, "\nPlayedSeconds: %d (%s)", h.PlayedSeconds, h.PlayTime())
	fmt.Fprintf(w, "\nSaveTimestamp: %d (%s)", h.SaveTimestamp, h.Timestamp().Format(time.RFC3339))
	fmt.Fprintf(w, "\nSessionVisibility: %d (%s)", h.SessionVisibility, h.SessionVisibility)
	fmt.Fprintf(w, "\nEditorObjectVersion: %d", h.EditorObjectVersion)
	w.WriteString("\nModMetadata: ")
	dumpString(w, 0, h.ModMetadata)
	fmt.Fprintf(w, "\nModFlags: %d", h.ModFlags)
}

func dumpChunks(w *bufio.Writer, file *File) {
	fmt.Fprintf(w, "\nBodyOffset: %d", file.BodyOffset)
	fmt.Fprintf(w, "\nChunks: (count:%d) {", len(file.Chunks))
	for i, c := range file.Chunks {
		dumpNewline(w, 1)
		ratio := 0.0
		if c.UncompressedSize > 0 {
			ratio = float64(c.CompressedSize) / float64(c.UncompressedSize) * 100
		}
		fmt.Fprintf(w, "#%d [%d]: %d / %d (%.1f%%)", i, c.Offset, c.CompressedSize, c.UncompressedSize, ratio)
	}
	w.WriteString("\n}")
}

func dumpBody(w *bufio.Writer, body *savfile.Body, opts DumpOptions) {
	fmt.Fprintf(w, "\nBodySize: %d", body.Size)
	if body.Partial() {
		fmt.Fprintf(w, "\nObjects: (count:%d) (partial, declared:%d) {", body.Len(), body.DeclaredObjects())
	} else {
		fmt.Fprintf(w, "\nObjects: (count:%d) {", body.Len())
	}
	for i, h := range body.Headers() {
		dumpNewline(w, 1)
		fmt.Fprintf(w, "#%d: %s {", i, h.Kind())
		switch h := h.(type) {
		case *savfile.ComponentHeader:
			dumpField(w, 2, "TypePath", h.TypePath)
			dumpField(w, 2, "RootObject", h.RootObject)
			dumpField(w, 2, "InstanceName", h.InstanceName)
			dumpField(w, 2, "ParentActorName", h.ParentActorName)
		case *savfile.ActorHeader:
			dumpField(w, 2, "TypePath", h.TypePath)
			dumpField(w, 2, "RootObject", h.RootObject)
			dumpField(w, 2, "InstanceName", h.InstanceName)
			dumpNewline(w, 2)
			fmt.Fprintf(w, "NeedTransform: %d", h.NeedTransform)
			dumpNewline(w, 2)
			fmt.Fprintf(w, "Rotation: [%g, %g, %g, %g]", h.Rotation.X, h.Rotation.Y, h.Rotation.Z, h.Rotation.W)
			dumpNewline(w, 2)
			fmt.Fprintf(w, "Position: [%g, %g, %g]", h.Position.X, h.Position.Y, h.Position.Z)
			dumpNewline(w, 2)
			fmt.Fprintf(w, "Scale: [%g, %g, %g]", h.Scale.X, h.Scale.Y, h.Scale.Z)
			dumpNewline(w, 2)
			fmt.Fprintf(w, "WasPlacedInLevel: %d", h.WasPlacedInLevel)
		}
		if o := body.Object(i); o != nil {
			if o, ok := o.(*savfile.ActorObject); ok {
				dumpField(w, 2, "ParentObjectRoot", o.ParentObjectRoot)
				dumpField(w, 2, "ParentObjectName", o.ParentObjectName)
				dumpNewline(w, 2)
				fmt.Fprintf(w, "ComponentCount: %d", o.ComponentCount)
			}
			dumpNewline(w, 2)
			w.WriteString("Properties: ")
			dumpPayload(w, 2, o.Payload(), opts.PayloadBytes)
		}
		dumpNewline(w, 1)
		w.WriteByte('}')
	}
	w.WriteString("\n}")

	fmt.Fprintf(w, "\nReferences: (count:%d) {", len(body.References))
	for i, ref := range body.References {
		dumpNewline(w, 1)
		fmt.Fprintf(w, "#%d: ", i)
		dumpString(w, 1, ref.LevelName)
		w.WriteString(" : ")
		dumpString(w, 1, ref.PathName)
	}
	w.WriteString("\n}")
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpField(w *bufio.Writer, indent int, name string, s savfile.String) {
	dumpNewline(w, indent)
	w.WriteString(name)
	w.WriteString(": ")
	dumpString(w, indent, s)
}

func dumpString(w *bufio.Writer, indent int, s savfile.String) {
	if s.Wide() {
		fmt.Fprintf(w, "(size:%d) (wide) ", s.Size)
		dumpBytes(w, indent, s.Raw)
		return
	}
	for _, r := range s.Value {
		if !unicode.IsGraphic(r) {
			dumpBytes(w, indent, []byte(s.Value))
			return
		}
	}
	fmt.Fprintf(w, "(len:%d) ", len(s.Value))
	w.WriteString(strconv.Quote(s.Value))
}

// dumpPayload writes up to limit bytes of b.
func dumpPayload(w *bufio.Writer, indent int, b []byte, limit int) {
	if limit <= 0 {
		fmt.Fprintf(w, "(len:%d)", len(b))
		return
	}
	if len(b) > limit {
		fmt.Fprintf(w, "(truncated:%d) ", limit)
		b = b[:limit]
	}
	dumpBytes(w, indent, b)
}

func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 16
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		w.WriteString("| ")
		for i := j; i < j+width; {
			if i < len(b) {
				s := strconv.FormatUint(uint64(b[i]), 16)
				if len(s) == 1 {
					w.WriteString("0")
				}
				w.WriteString(s)
			} else if len(b) < width {
				break
			} else {
				w.WriteString("  ")
			}
			i++
			if i%8 == 0 && i < j+width {
				w.WriteString("  ")
			} else {
				w.WriteString(" ")
			}
		}
		w.WriteString("|")
		n := len(b)
		if j+width < n {
			n = j + width
		}
		for i := j; i < n; i++ {
			if 32 <= b[i] && b[i] <= 126 {
				w.WriteRune(rune(b[i]))
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('|')
	}
}
