package xlwt

// SheetHeaderSize is the length of the sheet drawing header produced by SheetHeader.
const SheetHeaderSize = 0x5E

// groupShapeSize is the fixed group shape container inside the sheet header.
const groupShapeSize = 0x30

// sheetPictureOverhead is the length of a sheet picture record less its name.
const sheetPictureOverhead = 0x50

// SheetHeader builds the drawing container header of a sheet's picture stream.
//
// shapeCount is the number of pictures on the sheet including the newest one,
// name is the newest picture's name and payloadSize is the byte length of the
// picture records preceding the newest one. The newest record contributes
// 0x50 + 2*len(name) bytes, so the outer container length is
// 0x98 + 2*len(name) + payloadSize.
func SheetHeader(shapeCount uint32, name string, payloadSize uint32) ([]byte, error) {
	nameData, err := PackUTF16(name)
	if err != nil {
		return nil, err
	}
	nameLen := uint64(len(nameData))

	dgLen, err := fitU32("drawing container length", 0x98, nameLen, uint64(payloadSize))
	if err != nil {
		return nil, err
	}
	spgrLen, err := fitU32("shape group container length", 0x80, nameLen, uint64(payloadSize))
	if err != nil {
		return nil, err
	}
	nextShape, err := fitU8("shape count", uint64(shapeCount)+1)
	if err != nil {
		return nil, err
	}

	p := newPacker(SheetHeaderSize)
	p.frtHeader()
	// single drawing, not a drawing group
	p.u16(0x0001)
	p.header(0x000F, ESCHER_DG_CONTAINER, dgLen)

	p.header(0x0010, ESCHER_DG, 8)
	p.u8(0x00, nextShape)
	p.u16(0x0000)
	p.u8(0x00, uint8(shapeCount))
	p.u16(0x0004)

	p.header(0x000F, ESCHER_SPGR_CONTAINER, spgrLen)

	// the group shape every drawing starts with
	p.header(0x000F, ESCHER_SP_CONTAINER, groupShapeSize-8)
	p.header(0x0001, ESCHER_SPGR, 0x10)
	p.zeros(16)
	p.header(0x0002, ESCHER_SP, 8)
	p.u16(0x0400, 0x0000, 0x0005, 0x0000)

	return p.bytes(), nil
}

// SheetPicture builds the shape record of one header/footer picture.
// shapeIndex is the 1-based ordinal of the picture on its sheet; it also
// selects the stored picture in the drawing group.
func SheetPicture(shapeIndex uint32, anchor PictureAnchor) ([]byte, error) {
	code, err := ParsePositionCode(string(anchor.Position))
	if err != nil {
		return nil, err
	}
	index, err := fitU8("shape index", uint64(shapeIndex))
	if err != nil {
		return nil, err
	}
	nameData, err := PackUTF16(anchor.Name)
	if err != nil {
		return nil, err
	}
	posData, err := PackUTF16(string(code))
	if err != nil {
		return nil, err
	}
	nameLen := uint64(len(nameData))

	spLen, err := fitU32("shape container length", sheetPictureOverhead-8, nameLen)
	if err != nil {
		return nil, err
	}
	optLen, err := fitU32("shape options length", 0x20, nameLen)
	if err != nil {
		return nil, err
	}
	namePropLen, err := fitU32("picture name length", 2, nameLen)
	if err != nil {
		return nil, err
	}

	p := newPacker(int(spLen) + 8)
	p.header(0x000F, ESCHER_SP_CONTAINER, spLen)

	p.header(0x04B2, ESCHER_SP, 8)
	p.u8(index, 0x04)
	p.u16(0x0000, 0x0A00, 0x0000)

	// four properties: lock, picture, picture name, shape name
	p.header(0x0043, ESCHER_OPT, optLen)
	p.u16(0x007F, 0x0100, 0x0100)
	p.u16(0x4104)
	p.u8(index, 0x00)
	p.u16(0x0000)
	p.u16(0xC105)
	p.u32(namePropLen)
	p.u16(0xC380)
	p.u32(0x0006)

	p.raw(nameData)
	p.u16(0x0000)
	p.raw(posData)
	p.u16(0x0000)

	p.header(0x0000, ESCHER_CLIENT_ANCHOR, 8)
	p.u32(anchor.WidthPx, anchor.HeightPx)

	return p.bytes(), nil
}
