package xlwt

import "fmt"

// WorkbookHeaderSize is the length of the drawing group header produced by WorkbookHeader.
const WorkbookHeaderSize = 0x3E

// WorkbookPictureOverhead is the length of a stored picture record less the
// picture bytes.
const WorkbookPictureOverhead = 0x45

// WorkbookFooterSize is the length of the drawing group trailer.
const WorkbookFooterSize = 24

// wbFooter is the default most-recently-used colours record.
var wbFooter = [WorkbookFooterSize]byte{
	0x40, 0x00, 0xE1, 0xF1, 0x10, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x00,
	0x80, 0x80, 0x80, 0x00, 0xF7, 0x00, 0x00, 0x10,
}

func checkPictureCount(totalPictureCount uint32) error {
	if totalPictureCount < 1 || totalPictureCount > MaxPictures {
		return fmt.Errorf("%w: %d (supported: 1 to %d)", ErrUnsupportedPictureCount, totalPictureCount, MaxPictures)
	}
	return nil
}

// WorkbookHeader builds the drawing group header of the workbook's picture
// stream, closed by WorkbookFooter. totalPayloadSize is the summed byte
// length of every stored picture.
//
// The container lengths assume every picture lives in one store on a single
// sheet. They are only verified for one or two pictures; larger counts fail
// with ErrUnsupportedPictureCount.
func WorkbookHeader(totalPictureCount, totalPayloadSize uint32) ([]byte, error) {
	return workbookHeader(totalPictureCount, totalPayloadSize, true)
}

// WorkbookHeaderWithoutFooter is WorkbookHeader for a stream that is not
// closed by WorkbookFooter.
func WorkbookHeaderWithoutFooter(totalPictureCount, totalPayloadSize uint32) ([]byte, error) {
	return workbookHeader(totalPictureCount, totalPayloadSize, false)
}

func workbookHeader(totalPictureCount, totalPayloadSize uint32, includeFooter bool) ([]byte, error) {
	if err := checkPictureCount(totalPictureCount); err != nil {
		return nil, err
	}
	n := uint64(totalPictureCount)
	extra := WorkbookPictureOverhead * (n - 1)

	// Dgg record, store header and one stored picture record
	var groupBase uint64 = 0x20 + 8 + WorkbookPictureOverhead
	if includeFooter {
		groupBase += WorkbookFooterSize
	}
	dggLen, err := fitU32("drawing group container length", uint64(totalPayloadSize), groupBase, extra)
	if err != nil {
		return nil, err
	}
	storeLen, err := fitU32("picture store length", uint64(totalPayloadSize), WorkbookPictureOverhead, extra)
	if err != nil {
		return nil, err
	}
	storeInst, err := fitU16("picture store instance", 0x10*n+0xF)
	if err != nil {
		return nil, err
	}
	maxShape, err := fitU8("max shape id", n+1)
	if err != nil {
		return nil, err
	}

	p := newPacker(WorkbookHeaderSize)
	p.frtHeader()
	// drawing group
	p.u16(0x0002)
	p.header(0x000F, ESCHER_DGG_CONTAINER, dggLen)

	p.header(0x0000, ESCHER_DGG, 0x18)
	p.u8(maxShape, 0x04)
	p.u16(0x0000)
	p.u32(2)
	p.u16(uint16(maxShape), 0x0000)
	p.u32(1, 1, uint32(maxShape))

	p.header(storeInst, ESCHER_BSTORE_CONTAINER, storeLen)
	return p.bytes(), nil
}

// WorkbookPicture builds the stored picture record: an entry carrying the
// digest, followed by the picture blob with the digest repeated and the raw
// bytes verbatim. The layout does not vary with totalPictureCount, which is
// only range checked.
func WorkbookPicture(asset *ImageAsset, totalPictureCount uint32) ([]byte, error) {
	if asset == nil {
		return nil, NewXLWTError("no picture asset given")
	}
	if totalPictureCount < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPictureCount, totalPictureCount)
	}
	size := uint64(len(asset.Bytes))

	entryLen, err := fitU32("picture entry length", size, 0x3D)
	if err != nil {
		return nil, err
	}
	blipSize, err := fitU32("picture blob size", size, 0x19)
	if err != nil {
		return nil, err
	}
	blipLen, err := fitU32("picture blob length", size, 0x11)
	if err != nil {
		return nil, err
	}

	p := newPacker(WorkbookPictureOverhead + len(asset.Bytes))
	p.header(0x0052, ESCHER_BSE, entryLen)
	// JPEG for both Windows and Mac readers
	p.u8(0x05, 0x05)
	p.raw(asset.Digest[:])
	p.u16(0x00FF)
	p.u32(blipSize, 1, 0, 0)

	p.header(0x46A0, ESCHER_BLIP_JPEG, blipLen)
	p.raw(asset.Digest[:])
	p.u8(0xFF)
	p.raw(asset.Bytes)

	return p.bytes(), nil
}

// WorkbookFooter returns the fixed 24-byte record that closes the drawing group.
func WorkbookFooter() []byte {
	footer := wbFooter
	return footer[:]
}
