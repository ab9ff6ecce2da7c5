package xlwt

import (
	"fmt"
	"io"
	"path/filepath"
)

// BookOptions contains options for building a workbook.
type BookOptions struct {
	// Logfile is an open file to which messages and diagnostics are written.
	// Nothing is written when it is nil.
	Logfile io.Writer

	// Verbosity increases the volume of trace material written to the logfile.
	// 1 reports each added picture, 2 also reports stream framing.
	Verbosity int
}

// Book collects the sheets of a workbook and the drawing group their
// header/footer pictures share.
//
// A Book is not safe for concurrent use; callers serialize mutations.
type Book struct {
	sheetList    []*Sheet
	drawing      WorkbookDrawing
	drawingSheet *Sheet
	logfile      io.Writer
	verbosity    int
}

// NewBook creates an empty book.
func NewBook(options *BookOptions) *Book {
	if options == nil {
		options = &BookOptions{}
	}
	return &Book{
		logfile:   options.Logfile,
		verbosity: options.Verbosity,
	}
}

// AddSheet appends a sheet to the book.
func (b *Book) AddSheet(name string) *Sheet {
	sheet := &Sheet{Name: name, Book: b}
	b.sheetList = append(b.sheetList, sheet)
	return sheet
}

// Sheets returns a list of all sheets in the book.
func (b *Book) Sheets() []*Sheet {
	return b.sheetList
}

// NSheets returns the number of sheets in the book.
func (b *Book) NSheets() int {
	return len(b.sheetList)
}

// SheetByIndex returns a sheet by its index.
func (b *Book) SheetByIndex(sheetx int) (*Sheet, error) {
	if sheetx < 0 || sheetx >= len(b.sheetList) {
		return nil, NewXLWTError("sheet index %d out of range", sheetx)
	}
	return b.sheetList[sheetx], nil
}

// SheetByName returns a sheet by its name.
func (b *Book) SheetByName(sheetName string) (*Sheet, error) {
	for _, sheet := range b.sheetList {
		if sheet.Name == sheetName {
			return sheet, nil
		}
	}
	return nil, NewXLWTError("No sheet named <%s>", sheetName)
}

// SheetNames returns a list of all sheet names.
func (b *Book) SheetNames() []string {
	names := make([]string, len(b.sheetList))
	for i, sheet := range b.sheetList {
		names[i] = sheet.Name
	}
	return names
}

// Drawing returns the book's drawing group.
func (b *Book) Drawing() WorkbookDrawing {
	return b.drawing
}

// AddHeaderFooterPicture places the picture at imagePath in a page header or
// footer of sheet.
//
// position is a two letter code: L, C or R for the section, then H for the
// header or F for the footer; it is case-insensitive. The matching header or
// footer text must contain "&G" for the picture to be shown. widthPx and
// heightPx give the drawn size in pixels. An empty name defaults to the base
// name of imagePath.
//
// The picture bytes are stored verbatim and are not inspected. On any error
// neither the sheet nor the book changes.
func (b *Book) AddHeaderFooterPicture(sheet *Sheet, imagePath, position string, widthPx, heightPx uint32, name string) error {
	if sheet == nil || sheet.Book != b {
		return NewXLWTError("sheet does not belong to this book")
	}
	if b.drawingSheet != nil && b.drawingSheet != sheet {
		return fmt.Errorf("%w: %q", ErrMultipleDrawingSheets, b.drawingSheet.Name)
	}
	if name == "" {
		name = filepath.Base(imagePath)
	}
	anchor, err := NewPictureAnchor(position, widthPx, heightPx, name)
	if err != nil {
		return err
	}
	if err := checkPictureCount(b.drawing.TotalPictureCount() + 1); err != nil {
		return err
	}

	asset, err := LoadAsset(imagePath)
	if err != nil {
		return err
	}

	nextSheet, nextBook, err := AddPicture(sheet.drawing, b.drawing, asset, anchor)
	if err != nil {
		return fmt.Errorf("adding picture %q to sheet %q: %w", imagePath, sheet.Name, err)
	}
	sheet.drawing = nextSheet
	b.drawing = nextBook
	b.drawingSheet = sheet

	logf(b.logfile, b.verbosity, 1, "sheet %q: picture %d %s at %s, %dx%d px, %d bytes, md4 %s\n",
		sheet.Name, nextSheet.ShapeCount(), imagePath, anchor.Position,
		widthPx, heightPx, asset.ByteLength, asset.Digest)
	return nil
}

// DrawingGroupStream returns the workbook-global header/footer picture
// stream, closed by the drawing group footer, or nil when no picture was
// added.
func (b *Book) DrawingGroupStream() ([]byte, error) {
	stream, err := b.drawing.Stream(true)
	if err != nil {
		return nil, err
	}
	b.logFraming("drawing group", stream)
	return stream, nil
}

// Streams returns the sheet-local stream of the sheet carrying pictures and
// the workbook-global stream, ready for the file assembler. Both are nil
// when no picture was added.
func (b *Book) Streams() (sheetStream, bookStream []byte, err error) {
	if b.drawingSheet == nil {
		return nil, nil, nil
	}
	sheetStream, err = b.drawingSheet.DrawingStream()
	if err != nil {
		return nil, nil, err
	}
	b.logFraming(fmt.Sprintf("sheet %q", b.drawingSheet.Name), sheetStream)
	bookStream, err = b.DrawingGroupStream()
	if err != nil {
		return nil, nil, err
	}
	return sheetStream, bookStream, nil
}

func (b *Book) logFraming(label string, stream []byte) {
	if b.verbosity < 2 || stream == nil {
		return
	}
	records, err := ScanRecords(stream)
	if err != nil {
		logf(b.logfile, b.verbosity, 2, "%s: %v\n", label, err)
		return
	}
	logf(b.logfile, b.verbosity, 2, "%s: %d bytes in %d record(s)\n", label, len(stream), len(records))
}
