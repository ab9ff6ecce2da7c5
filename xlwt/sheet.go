package xlwt

import "fmt"

// PictureEntry is one header/footer picture placed on a sheet.
type PictureEntry struct {
	Anchor PictureAnchor
	Asset  *ImageAsset

	// ShapeIndex is the 1-based ordinal of the picture on its sheet.
	ShapeIndex uint32

	shapeRecord []byte
	storeRecord []byte
}

// SheetDrawing holds the header/footer pictures of one sheet in the order
// they were added. The drawing header is derived from the whole list, so it
// is rebuilt rather than patched when a picture is added.
type SheetDrawing struct {
	pictures []PictureEntry
}

// ShapeCount returns the number of pictures on the sheet.
func (d SheetDrawing) ShapeCount() uint32 {
	return uint32(len(d.pictures))
}

// Pictures returns the pictures in the order they were added. Each entry
// carries its own copy of the asset, so editing it leaves the drawing alone.
func (d SheetDrawing) Pictures() []PictureEntry {
	entries := make([]PictureEntry, len(d.pictures))
	for i, entry := range d.pictures {
		entry.Asset = entry.Asset.clone()
		entries[i] = entry
	}
	return entries
}

// Build returns the drawing header and the concatenated picture records.
// Both are nil for a sheet without pictures.
func (d SheetDrawing) Build() ([]byte, []byte, error) {
	if len(d.pictures) == 0 {
		return nil, nil, nil
	}
	var payload []byte
	for _, entry := range d.pictures {
		payload = append(payload, entry.shapeRecord...)
	}
	last := d.pictures[len(d.pictures)-1]
	preceding, err := fitU32("sheet picture records", uint64(len(payload)-len(last.shapeRecord)))
	if err != nil {
		return nil, nil, err
	}
	header, err := SheetHeader(d.ShapeCount(), last.Anchor.Name, preceding)
	if err != nil {
		return nil, nil, err
	}
	return header, payload, nil
}

// Stream returns the consolidated sheet drawing stream.
func (d SheetDrawing) Stream() ([]byte, error) {
	header, payload, err := d.Build()
	if err != nil {
		return nil, err
	}
	return ConsolidateRecord(header, payload, false), nil
}

// WorkbookDrawing holds the drawing group shared by every sheet of a book:
// one stored picture per header/footer picture.
type WorkbookDrawing struct {
	pictures []PictureEntry
}

// TotalPictureCount returns the number of stored pictures.
func (d WorkbookDrawing) TotalPictureCount() uint32 {
	return uint32(len(d.pictures))
}

// TotalPayloadSize returns the summed byte length of the stored pictures.
func (d WorkbookDrawing) TotalPayloadSize() (uint32, error) {
	var total uint64
	for _, entry := range d.pictures {
		total += uint64(len(entry.Asset.Bytes))
	}
	return fitU32("total picture size", total)
}

// Build returns the drawing group header and the concatenated stored
// picture records. Both are nil when no picture was added. includeFooter
// selects whether the header counts the footer the stream is closed with.
func (d WorkbookDrawing) Build(includeFooter bool) ([]byte, []byte, error) {
	if len(d.pictures) == 0 {
		return nil, nil, nil
	}
	total, err := d.TotalPayloadSize()
	if err != nil {
		return nil, nil, err
	}
	header, err := workbookHeader(d.TotalPictureCount(), total, includeFooter)
	if err != nil {
		return nil, nil, err
	}
	var payload []byte
	for _, entry := range d.pictures {
		payload = append(payload, entry.storeRecord...)
	}
	return header, payload, nil
}

// Stream returns the consolidated drawing group stream, closed by the footer
// when includeFooter is set.
func (d WorkbookDrawing) Stream(includeFooter bool) ([]byte, error) {
	header, payload, err := d.Build(includeFooter)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}
	return ConsolidateRecord(header, payload, includeFooter), nil
}

// AddPicture returns sheet and book with the picture appended to both. The
// inputs are left unchanged, so a failure commits nothing.
func AddPicture(sheet SheetDrawing, book WorkbookDrawing, asset *ImageAsset, anchor PictureAnchor) (SheetDrawing, WorkbookDrawing, error) {
	shapeIndex := sheet.ShapeCount() + 1
	totalCount := book.TotalPictureCount() + 1
	if shapeIndex != totalCount {
		return sheet, book, NewXLWTError("sheet holds %d pictures but the book holds %d", shapeIndex-1, totalCount-1)
	}
	if err := checkPictureCount(totalCount); err != nil {
		return sheet, book, err
	}

	shapeRecord, err := SheetPicture(shapeIndex, anchor)
	if err != nil {
		return sheet, book, err
	}
	storeRecord, err := WorkbookPicture(asset, totalCount)
	if err != nil {
		return sheet, book, err
	}
	entry := PictureEntry{
		Anchor:      anchor,
		Asset:       asset.clone(),
		ShapeIndex:  shapeIndex,
		shapeRecord: shapeRecord,
		storeRecord: storeRecord,
	}

	nextSheet := SheetDrawing{pictures: append(append([]PictureEntry(nil), sheet.pictures...), entry)}
	nextBook := WorkbookDrawing{pictures: append(append([]PictureEntry(nil), book.pictures...), entry)}

	// Building both headers surfaces any length overflow before committing.
	if _, _, err := nextSheet.Build(); err != nil {
		return sheet, book, err
	}
	if _, _, err := nextBook.Build(true); err != nil {
		return sheet, book, err
	}
	return nextSheet, nextBook, nil
}

// Sheet is a worksheet that can carry header/footer pictures.
type Sheet struct {
	// Name is the name of the sheet.
	Name string

	// Book is a reference to the Book object to which this sheet belongs.
	Book *Book

	drawing SheetDrawing
}

// AddHeaderFooterPicture places the picture at imagePath in the page header
// or footer. See Book.AddHeaderFooterPicture.
func (s *Sheet) AddHeaderFooterPicture(imagePath, position string, widthPx, heightPx uint32, name string) error {
	if s.Book == nil {
		return NewXLWTError("sheet %q does not belong to a book", s.Name)
	}
	return s.Book.AddHeaderFooterPicture(s, imagePath, position, widthPx, heightPx, name)
}

// Drawing returns the sheet's picture list.
func (s *Sheet) Drawing() SheetDrawing {
	return s.drawing
}

// DrawingStream returns the sheet-local header/footer picture stream, or nil
// when the sheet has no pictures.
func (s *Sheet) DrawingStream() ([]byte, error) {
	stream, err := s.drawing.Stream()
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
	}
	return stream, nil
}
