package xlwt

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// drawingPrefixSize is the record tag, ten reserved bytes and the drawing kind
// that precede the drawing records of either stream.
const drawingPrefixSize = 14

// Drawing kinds stored after the stream prefix.
const (
	DrawingKindSheet    = 0x0001
	DrawingKindWorkbook = 0x0002
)

// EscherRecord is one decoded office drawing record.
type EscherRecord struct {
	// Offset is the position of the record header in the drawing data.
	Offset int

	Version  uint8
	Instance uint16
	Type     uint16

	// Length is the declared body length.
	Length uint32

	// Body is the record body; for containers it holds the children.
	Body []byte

	Children []*EscherRecord
}

// IsContainer reports whether the record holds child records.
func (r *EscherRecord) IsContainer() bool {
	return r.Version == 0xF
}

// Find returns the first record of the given type in r's subtree.
func (r *EscherRecord) Find(recType uint16) *EscherRecord {
	if r.Type == recType {
		return r
	}
	for _, child := range r.Children {
		if found := child.Find(recType); found != nil {
			return found
		}
	}
	return nil
}

// ParseEscher decodes a sequence of drawing records, descending into
// containers. Every declared length must match the bytes it encloses.
func ParseEscher(data []byte) ([]*EscherRecord, error) {
	return parseEscherAt(data, 0)
}

func parseEscherAt(data []byte, base int) ([]*EscherRecord, error) {
	var records []*EscherRecord
	pos := 0
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, fmt.Errorf("%w: truncated drawing record header at offset %d", ErrMalformedRecord, base+pos)
		}
		verInst := binary.LittleEndian.Uint16(data[pos : pos+2])
		rec := &EscherRecord{
			Offset:   base + pos,
			Version:  uint8(verInst & 0xF),
			Instance: verInst >> 4,
			Type:     binary.LittleEndian.Uint16(data[pos+2 : pos+4]),
			Length:   binary.LittleEndian.Uint32(data[pos+4 : pos+8]),
		}
		start := pos + 8
		if uint64(start)+uint64(rec.Length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: %s at offset %d declares %d bytes, %d remain",
				ErrMalformedRecord, EscherNameFromType(rec.Type), rec.Offset, rec.Length, len(data)-start)
		}
		end := start + int(rec.Length)
		rec.Body = data[start:end]
		if rec.IsContainer() {
			children, err := parseEscherAt(rec.Body, base+start)
			if err != nil {
				return nil, err
			}
			rec.Children = children
		}
		records = append(records, rec)
		pos = end
	}
	return records, nil
}

// DrawingStream is a decoded header/footer picture stream.
type DrawingStream struct {
	// Kind is DrawingKindSheet or DrawingKindWorkbook.
	Kind uint16

	// Records are the top-level drawing records.
	Records []*EscherRecord
}

// ParseDrawingStream reassembles a consolidated stream and decodes its
// drawing records.
func ParseDrawingStream(stream []byte) (*DrawingStream, error) {
	data, err := ReadRecords(stream)
	if err != nil {
		return nil, err
	}
	if len(data) < drawingPrefixSize {
		return nil, fmt.Errorf("%w: drawing data is %d bytes", ErrMalformedRecord, len(data))
	}
	if binary.LittleEndian.Uint16(data[0:2]) != XL_HFPICTURE {
		return nil, fmt.Errorf("%w: drawing data does not open with the record tag", ErrMalformedRecord)
	}
	records, err := parseEscherAt(data[drawingPrefixSize:], drawingPrefixSize)
	if err != nil {
		return nil, err
	}
	return &DrawingStream{
		Kind:    binary.LittleEndian.Uint16(data[12:14]),
		Records: records,
	}, nil
}

// Find returns the first record of the given type.
func (d *DrawingStream) Find(recType uint16) *EscherRecord {
	for _, rec := range d.Records {
		if found := rec.Find(recType); found != nil {
			return found
		}
	}
	return nil
}

// DumpEscher writes an indented outline of the drawing records.
func DumpEscher(w io.Writer, records []*EscherRecord, indent int) {
	for _, rec := range records {
		fmt.Fprintf(w, "%s%-16s ver=%X inst=0x%03x len=%d @%d\n",
			strings.Repeat("  ", indent), EscherNameFromType(rec.Type), rec.Version, rec.Instance, rec.Length, rec.Offset)
		if rec.IsContainer() {
			DumpEscher(w, rec.Children, indent+1)
		}
	}
}
