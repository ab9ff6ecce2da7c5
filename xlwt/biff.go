package xlwt

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// utf16le encodes without emitting a byte-order mark.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// PackUTF16 encodes s as little-endian UTF-16 code units with no byte-order mark.
func PackUTF16(s string) ([]byte, error) {
	data, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %q as UTF-16: %w", s, err)
	}
	return data, nil
}

// UnpackUTF16 decodes little-endian UTF-16 code units.
func UnpackUTF16(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", fmt.Errorf("invalid UTF-16 string length %d", len(data))
	}
	decoded, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16: %v", err)
	}
	return string(decoded), nil
}

// packer accumulates little-endian record fields.
type packer struct {
	buf []byte
}

func newPacker(capacity int) *packer {
	return &packer{buf: make([]byte, 0, capacity)}
}

func (p *packer) u8(values ...uint8) {
	p.buf = append(p.buf, values...)
}

func (p *packer) u16(values ...uint16) {
	for _, v := range values {
		p.buf = binary.LittleEndian.AppendUint16(p.buf, v)
	}
}

func (p *packer) u32(values ...uint32) {
	for _, v := range values {
		p.buf = binary.LittleEndian.AppendUint32(p.buf, v)
	}
}

func (p *packer) zeros(n int) {
	p.buf = append(p.buf, make([]byte, n)...)
}

func (p *packer) raw(data []byte) {
	p.buf = append(p.buf, data...)
}

// header writes a drawing record header: version/instance, type, length.
func (p *packer) header(verInst, recType uint16, length uint32) {
	p.u16(verInst, recType)
	p.u32(length)
}

// frtHeader writes the record tag and the ten zero bytes that open each
// header/footer picture stream.
func (p *packer) frtHeader() {
	p.u16(XL_HFPICTURE)
	p.zeros(10)
}

func (p *packer) bytes() []byte {
	return p.buf
}

// fitU32 sums parts and checks the result fits a 32-bit length field.
func fitU32(field string, parts ...uint64) (uint32, error) {
	var total uint64
	for _, part := range parts {
		total += part
		if total > math.MaxUint32 {
			return 0, overflowError(field, total, math.MaxUint32)
		}
	}
	return uint32(total), nil
}

func fitU16(field string, value uint64) (uint16, error) {
	if value > math.MaxUint16 {
		return 0, overflowError(field, value, math.MaxUint16)
	}
	return uint16(value), nil
}

func fitU8(field string, value uint64) (uint8, error) {
	if value > math.MaxUint8 {
		return 0, overflowError(field, value, math.MaxUint8)
	}
	return uint8(value), nil
}
