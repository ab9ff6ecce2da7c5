package xlwt

import (
	"encoding/binary"
	"fmt"
)

// SplitChunks splits record data the way ConsolidateRecord frames it: a first
// chunk of MaxRecordData bytes, then chunks of MaxContinueData bytes, the last
// one taking the remainder.
func SplitChunks(data []byte) [][]byte {
	var chunks [][]byte
	for pos := 0; pos < len(data); {
		size := MaxContinueData
		if pos == 0 {
			size = MaxRecordData
		}
		end := min(pos+size, len(data))
		chunks = append(chunks, data[pos:end])
		pos = end
	}
	return chunks
}

// ConsolidateRecord frames header, payload and, if includeFooter is set, the
// drawing group footer as header/footer picture records. Data up to
// MaxRecordData bytes becomes a single record; longer data is split into a
// first record followed by continuation records, each carrying the record
// tag, a marker and its chunk. Empty data yields no bytes.
func ConsolidateRecord(header, payload []byte, includeFooter bool) []byte {
	data := make([]byte, 0, len(header)+len(payload)+WorkbookFooterSize)
	data = append(data, header...)
	data = append(data, payload...)
	if includeFooter {
		data = append(data, WorkbookFooter()...)
	}
	if len(data) == 0 {
		return nil
	}

	if len(data) <= MaxRecordData {
		p := newPacker(len(data) + 4)
		p.u16(XL_HFPICTURE, uint16(len(data)))
		p.raw(data)
		return p.bytes()
	}

	chunks := SplitChunks(data)
	p := newPacker(len(data) + 4 + (len(chunks)-1)*(4+continueOverhead))
	p.u16(XL_HFPICTURE, uint16(len(chunks[0])))
	p.raw(chunks[0])
	for _, chunk := range chunks[1:] {
		p.u16(XL_HFPICTURE, uint16(len(chunk)+continueOverhead))
		p.u16(XL_HFPICTURE)
		p.zeros(8)
		p.u16(0x0000, continueFlag)
		p.raw(chunk)
	}
	return p.bytes()
}

// RecordInfo describes one framed record of a consolidated stream.
type RecordInfo struct {
	// Offset is the position of the record tag in the stream.
	Offset int
	// Length is the record's declared length.
	Length int
	// Continuation is set for every record after the first.
	Continuation bool
	// Chunk is the record data less any continuation marker.
	Chunk []byte
}

// ScanRecords splits a consolidated stream into its framed records,
// checking tags, declared lengths and continuation markers.
func ScanRecords(stream []byte) ([]RecordInfo, error) {
	var records []RecordInfo
	position := 0
	for position < len(stream) {
		code, length, data, err := getRecordParts(stream, position)
		if err != nil {
			return nil, err
		}
		if code != XL_HFPICTURE {
			return nil, fmt.Errorf("%w: record tag 0x%04x at offset %d", ErrMalformedRecord, code, position)
		}
		rec := RecordInfo{Offset: position, Length: length, Chunk: data}
		if len(records) > 0 {
			if err := checkContinueMarker(data, position); err != nil {
				return nil, err
			}
			rec.Continuation = true
			rec.Chunk = data[continueOverhead:]
		}
		records = append(records, rec)
		position += 4 + length
	}
	return records, nil
}

// ReadRecords reassembles the data framed by ConsolidateRecord.
func ReadRecords(stream []byte) ([]byte, error) {
	records, err := ScanRecords(stream)
	if err != nil {
		return nil, err
	}
	var data []byte
	for _, rec := range records {
		data = append(data, rec.Chunk...)
	}
	return data, nil
}

// getRecordParts reads the record at position.
func getRecordParts(stream []byte, position int) (int, int, []byte, error) {
	if position+4 > len(stream) {
		return 0, 0, nil, fmt.Errorf("%w: truncated record header at offset %d", ErrMalformedRecord, position)
	}
	code := int(binary.LittleEndian.Uint16(stream[position : position+2]))
	length := int(binary.LittleEndian.Uint16(stream[position+2 : position+4]))
	position += 4
	if position+length > len(stream) {
		return code, length, nil, fmt.Errorf("%w: record at offset %d declares %d bytes, %d remain",
			ErrMalformedRecord, position-4, length, len(stream)-position)
	}
	return code, length, stream[position : position+length], nil
}

func checkContinueMarker(data []byte, position int) error {
	if len(data) < continueOverhead {
		return fmt.Errorf("%w: continuation at offset %d shorter than its marker", ErrMalformedRecord, position)
	}
	if binary.LittleEndian.Uint16(data[0:2]) != XL_HFPICTURE {
		return fmt.Errorf("%w: continuation at offset %d lacks the record tag", ErrMalformedRecord, position)
	}
	for _, b := range data[2:10] {
		if b != 0 {
			return fmt.Errorf("%w: continuation at offset %d has non-zero reserved bytes", ErrMalformedRecord, position)
		}
	}
	if binary.LittleEndian.Uint16(data[10:12]) != 0 || binary.LittleEndian.Uint16(data[12:14]) != continueFlag {
		return fmt.Errorf("%w: continuation at offset %d has a bad continue flag", ErrMalformedRecord, position)
	}
	return nil
}
