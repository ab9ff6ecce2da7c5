package xlwt

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// HexCharDump writes data[ofs:ofs+dlen] in hex and printable characters,
// 16 bytes per line. NUL shows as '~' and other unprintables as '?'.
func HexCharDump(data []byte, ofs, dlen, base int, w io.Writer, unnumbered bool) {
	endpos := min(ofs+dlen, len(data))
	for pos := ofs; pos < endpos; {
		endsub := min(pos+16, endpos)
		hexd := make([]byte, 0, 48)
		chard := make([]byte, 0, 16)
		for _, c := range data[pos:endsub] {
			hexd = fmt.Appendf(hexd, "%02x ", c)
			switch {
			case c == 0:
				chard = append(chard, '~')
			case c < ' ' || c > '~':
				chard = append(chard, '?')
			default:
				chard = append(chard, c)
			}
		}
		prefix := ""
		if !unnumbered {
			prefix = fmt.Sprintf("%5d: ", base+pos-ofs)
		}
		fmt.Fprintf(w, "%s     %-48s %s\n", prefix, hexd, chard)
		pos = endsub
	}
}

// DumpStream writes each framed record of a consolidated stream in char &
// hex format, followed by an outline of the drawing records it carries.
func DumpStream(stream []byte, outfile io.Writer, unnumbered bool) error {
	records, err := ScanRecords(stream)
	if err != nil {
		return err
	}
	for _, rec := range records {
		kind := "HFPICTURE"
		if rec.Continuation {
			kind = "HFPICTURE (continue)"
		}
		if unnumbered {
			fmt.Fprintf(outfile, "%04x %s len = %04x (%d)\n", XL_HFPICTURE, kind, rec.Length, rec.Length)
		} else {
			fmt.Fprintf(outfile, "%8d: %04x %s len = %04x (%d)\n", rec.Offset, XL_HFPICTURE, kind, rec.Length, rec.Length)
		}
		HexCharDump(rec.Chunk, 0, len(rec.Chunk), rec.Offset+4, outfile, unnumbered)
	}

	drawing, err := ParseDrawingStream(stream)
	if err != nil {
		return err
	}
	switch drawing.Kind {
	case DrawingKindSheet:
		fmt.Fprintln(outfile, "sheet drawing:")
	case DrawingKindWorkbook:
		fmt.Fprintln(outfile, "drawing group:")
	default:
		fmt.Fprintf(outfile, "drawing kind 0x%04x:\n", drawing.Kind)
	}
	DumpEscher(outfile, drawing.Records, 1)
	return nil
}

// Dump dumps a header/footer picture stream file for debugging.
//
// filename: The path to the stream to be dumped.
// outfile: An open file, to which the dump is written.
// unnumbered: If true, omit offsets (for meaningful diffs).
func Dump(filename string, outfile io.Writer, unnumbered bool) error {
	stream, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return DumpStream(stream, outfile, unnumbered)
}

// CountRecords summarises the drawing records of a stream file.
// It writes the sorted (record_name, count) pairs.
//
// filename: The path to the stream to be summarised.
// outfile: An open file, to which the summary is written.
func CountRecords(filename string, outfile io.Writer) error {
	stream, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	drawing, err := ParseDrawingStream(stream)
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	var walk func([]*EscherRecord)
	walk = func(records []*EscherRecord) {
		for _, rec := range records {
			counts[EscherNameFromType(rec.Type)]++
			walk(rec.Children)
		}
	}
	walk(drawing.Records)

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(outfile, "%8d %s\n", counts[name], name)
	}
	return nil
}
