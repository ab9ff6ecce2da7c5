package xlwt

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func streams(t *testing.T, book *Book) ([]byte, []byte) {
	t.Helper()
	sheetStream, bookStream, err := book.Streams()
	if err != nil {
		t.Fatalf("Streams: %v", err)
	}
	return sheetStream, bookStream
}

func TestAddHeaderFooterPictureEndToEnd(t *testing.T) {
	data := sampleBytes(2000)
	path := writeSample(t, "logo.jpg", data)

	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	if err := sheet.AddHeaderFooterPicture(path, "CH", 100, 50, "Logo"); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	sheetStream, bookStream := streams(t, book)

	for name, stream := range map[string][]byte{"sheet": sheetStream, "book": bookStream} {
		if u16At(stream, 0) != XL_HFPICTURE {
			t.Errorf("%s stream tag = 0x%04x, expected 0x%04x", name, u16At(stream, 0), XL_HFPICTURE)
		}
		if int(u16At(stream, 2)) != len(stream)-4 {
			t.Errorf("%s stream declares %d bytes, holds %d", name, u16At(stream, 2), len(stream)-4)
		}
	}
	if !bytes.Equal(bookStream[len(bookStream)-WorkbookFooterSize:], WorkbookFooter()) {
		t.Error("book stream does not end with the footer")
	}

	// header(0x5e) + picture(0x50 + 2*4)
	if len(sheetStream) != 4+SheetHeaderSize+0x58 {
		t.Errorf("len(sheet stream) = %d, expected %d", len(sheetStream), 4+SheetHeaderSize+0x58)
	}
	if got := u32At(sheetStream, 4+18); got != 0x98+8 {
		t.Errorf("sheet container length = 0x%x, expected 0x%x", got, 0x98+8)
	}
	if len(bookStream) != 4+WorkbookHeaderSize+WorkbookPictureOverhead+len(data)+WorkbookFooterSize {
		t.Errorf("len(book stream) = %d", len(bookStream))
	}

	sheetDrawing, err := ParseDrawingStream(sheetStream)
	if err != nil {
		t.Fatalf("ParseDrawingStream(sheet): %v", err)
	}
	if sheetDrawing.Kind != DrawingKindSheet || len(sheetDrawing.Records) != 1 {
		t.Errorf("sheet drawing kind %d with %d top-level records", sheetDrawing.Kind, len(sheetDrawing.Records))
	}
	bookDrawing, err := ParseDrawingStream(bookStream)
	if err != nil {
		t.Fatalf("ParseDrawingStream(book): %v", err)
	}
	if bookDrawing.Kind != DrawingKindWorkbook || len(bookDrawing.Records) != 1 {
		t.Errorf("book drawing kind %d with %d top-level records", bookDrawing.Kind, len(bookDrawing.Records))
	}
	if bookDrawing.Find(ESCHER_MRU_COLORS) == nil {
		t.Error("footer is not inside the drawing group container")
	}

	entries := sheet.Drawing().Pictures()
	if len(entries) != 1 || entries[0].ShapeIndex != 1 || entries[0].Anchor.Position != CenterHeader {
		t.Errorf("sheet pictures = %+v", entries)
	}
}

func TestAddTwoPictures(t *testing.T) {
	first := sampleBytes(300)
	second := sampleBytes(700)
	book := NewBook(nil)
	sheet := book.AddSheet("Report")

	if err := sheet.AddHeaderFooterPicture(writeSample(t, "a.jpg", first), "LH", 10, 20, "First"); err != nil {
		t.Fatalf("AddHeaderFooterPicture(first): %v", err)
	}
	firstSheetStream, _ := streams(t, book)

	if err := sheet.AddHeaderFooterPicture(writeSample(t, "b.jpg", second), "rf", 30, 40, "Second"); err != nil {
		t.Fatalf("AddHeaderFooterPicture(second): %v", err)
	}
	sheetStream, bookStream := streams(t, book)

	if sheet.Drawing().ShapeCount() != 2 || book.Drawing().TotalPictureCount() != 2 {
		t.Errorf("counts = %d, %d, expected 2, 2", sheet.Drawing().ShapeCount(), book.Drawing().TotalPictureCount())
	}

	sheetDrawing, err := ParseDrawingStream(sheetStream)
	if err != nil {
		t.Fatalf("ParseDrawingStream(sheet): %v", err)
	}
	if len(sheetDrawing.Records) != 1 {
		t.Fatalf("sheet stream has %d top-level records, expected a single regenerated header", len(sheetDrawing.Records))
	}
	dg := sheetDrawing.Find(ESCHER_DG)
	if dg.Body[1] != 3 || dg.Body[5] != 2 {
		t.Errorf("Dg shape counters = %d, %d, expected 3, 2", dg.Body[1], dg.Body[5])
	}
	spgr := sheetDrawing.Find(ESCHER_SPGR_CONTAINER)
	if len(spgr.Children) != 3 {
		t.Errorf("SpgrContainer holds %d shapes, expected 3", len(spgr.Children))
	}

	// the first picture record survives unchanged after the new header
	firstData, err := ReadRecords(firstSheetStream)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	data, err := ReadRecords(sheetStream)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if !bytes.Equal(data[SheetHeaderSize:len(firstData)], firstData[SheetHeaderSize:]) {
		t.Error("first picture record changed after adding a second picture")
	}
	if bytes.Equal(data[:SheetHeaderSize], firstData[:SheetHeaderSize]) {
		t.Error("sheet header was not regenerated")
	}

	bookDrawing, err := ParseDrawingStream(bookStream)
	if err != nil {
		t.Fatalf("ParseDrawingStream(book): %v", err)
	}
	store := bookDrawing.Find(ESCHER_BSTORE_CONTAINER)
	if store.Instance != 2 || len(store.Children) != 2 {
		t.Errorf("picture store instance %d with %d entries, expected 2 and 2", store.Instance, len(store.Children))
	}
	for i, want := range [][]byte{first, second} {
		entry := store.Children[i]
		digest := ComputeDigest(want)
		if !bytes.Equal(entry.Body[2:18], digest[:]) {
			t.Errorf("entry %d digest = % x, expected % x", i, entry.Body[2:18], digest[:])
		}
		if !bytes.Equal(entry.Body[len(entry.Body)-len(want):], want) {
			t.Errorf("entry %d does not end with the picture bytes", i)
		}
	}
}

func TestAddLargePictureIsChunked(t *testing.T) {
	data := sampleBytes(3 * MaxRecordData)
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	if err := sheet.AddHeaderFooterPicture(writeSample(t, "big.jpg", data), "CF", 640, 480, ""); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	_, bookStream := streams(t, book)

	records, err := ScanRecords(bookStream)
	if err != nil {
		t.Fatalf("ScanRecords: %v", err)
	}
	if len(records) < 4 {
		t.Errorf("book stream has %d records, expected continuations", len(records))
	}
	bookDrawing, err := ParseDrawingStream(bookStream)
	if err != nil {
		t.Fatalf("ParseDrawingStream: %v", err)
	}
	blip := bookDrawing.Find(ESCHER_BSE)
	if blip == nil {
		t.Fatal("no stored picture entry")
	}
	body := blip.Body
	if body[len(body)-len(data)-1] != 0xFF || !bytes.Equal(body[len(body)-len(data):], data) {
		t.Error("picture bytes are not stored verbatim after the marker byte")
	}
}

func TestAddPictureDefaultName(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	if err := sheet.AddHeaderFooterPicture(writeSample(t, "logo.jpg", sampleBytes(10)), "LF", 1, 1, ""); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	if name := sheet.Drawing().Pictures()[0].Anchor.Name; name != "logo.jpg" {
		t.Errorf("default name = %q, expected %q", name, "logo.jpg")
	}
}

func TestAddPictureFailuresLeaveStateUnchanged(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	other := book.AddSheet("Sheet2")
	path := writeSample(t, "logo.jpg", sampleBytes(100))

	if err := sheet.AddHeaderFooterPicture(path, "CH", 1, 1, "a"); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	sheetBefore, bookBefore := streams(t, book)

	tests := []struct {
		name  string
		sheet *Sheet
		path  string
		pos   string
		check func(error) bool
	}{
		{"bad position", sheet, path, "MH", func(err error) bool { return errors.Is(err, ErrInvalidPositionCode) }},
		{"missing file", sheet, filepath.Join(t.TempDir(), "none.jpg"), "CH", func(err error) bool {
			var readErr *AssetReadError
			return errors.As(err, &readErr) && errors.Is(err, fs.ErrNotExist)
		}},
		{"second sheet", other, path, "CH", func(err error) bool { return errors.Is(err, ErrMultipleDrawingSheets) }},
	}

	for _, test := range tests {
		err := test.sheet.AddHeaderFooterPicture(test.path, test.pos, 1, 1, "x")
		if err == nil || !test.check(err) {
			t.Errorf("%s: error = %v", test.name, err)
		}
		sheetAfter, bookAfter := streams(t, book)
		if !bytes.Equal(sheetAfter, sheetBefore) || !bytes.Equal(bookAfter, bookBefore) {
			t.Errorf("%s: streams changed after a failed addition", test.name)
		}
	}
	if other.Drawing().ShapeCount() != 0 {
		t.Errorf("Sheet2 has %d pictures, expected 0", other.Drawing().ShapeCount())
	}
}

func TestThirdPictureRejected(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	path := writeSample(t, "logo.jpg", sampleBytes(100))
	for _, pos := range []string{"LH", "RF"} {
		if err := sheet.AddHeaderFooterPicture(path, pos, 1, 1, ""); err != nil {
			t.Fatalf("AddHeaderFooterPicture(%s): %v", pos, err)
		}
	}
	sheetBefore, bookBefore := streams(t, book)

	if err := sheet.AddHeaderFooterPicture(path, "CH", 1, 1, ""); !errors.Is(err, ErrUnsupportedPictureCount) {
		t.Errorf("third picture error = %v, expected ErrUnsupportedPictureCount", err)
	}
	sheetAfter, bookAfter := streams(t, book)
	if !bytes.Equal(sheetAfter, sheetBefore) || !bytes.Equal(bookAfter, bookBefore) {
		t.Error("streams changed after a rejected third picture")
	}
}

func TestMissingAssetOnEmptyBook(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	err := sheet.AddHeaderFooterPicture(filepath.Join(t.TempDir(), "none.jpg"), "CH", 1, 1, "")
	var readErr *AssetReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, expected *AssetReadError", err)
	}
	sheetStream, bookStream := streams(t, book)
	if sheetStream != nil || bookStream != nil {
		t.Error("failed first addition produced streams")
	}
	// the failed sheet does not claim the drawing group
	if err := book.AddSheet("Sheet2").AddHeaderFooterPicture(writeSample(t, "a.jpg", sampleBytes(5)), "CH", 1, 1, ""); err != nil {
		t.Errorf("AddHeaderFooterPicture on another sheet: %v", err)
	}
}

func TestAddPictureInvariantCounts(t *testing.T) {
	asset, err := NewImageAsset("a.jpg", sampleBytes(10))
	if err != nil {
		t.Fatalf("NewImageAsset: %v", err)
	}
	anchor := PictureAnchor{Position: CenterHeader, WidthPx: 1, HeightPx: 1, Name: "a"}

	sheet, book, err := AddPicture(SheetDrawing{}, WorkbookDrawing{}, asset, anchor)
	if err != nil {
		t.Fatalf("AddPicture: %v", err)
	}
	if _, _, err := AddPicture(SheetDrawing{}, book, asset, anchor); err == nil {
		t.Error("AddPicture with diverging counts should fail")
	}
	nextSheet, nextBook, err := AddPicture(sheet, book, asset, anchor)
	if err != nil {
		t.Fatalf("AddPicture(second): %v", err)
	}
	if sheet.ShapeCount() != 1 || book.TotalPictureCount() != 1 {
		t.Error("AddPicture modified its inputs")
	}
	if nextSheet.ShapeCount() != 2 || nextBook.TotalPictureCount() != 2 {
		t.Errorf("counts = %d, %d, expected 2, 2", nextSheet.ShapeCount(), nextBook.TotalPictureCount())
	}
	total, err := nextBook.TotalPayloadSize()
	if err != nil || total != 20 {
		t.Errorf("TotalPayloadSize() = %d, %v, expected 20", total, err)
	}
}

func TestWorkbookStreamWithoutFooter(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	for _, size := range []int{10, MaxRecordData} {
		path := writeSample(t, "logo.jpg", sampleBytes(size))
		if err := sheet.AddHeaderFooterPicture(path, "CH", 1, 1, ""); err != nil {
			t.Fatalf("AddHeaderFooterPicture: %v", err)
		}

		stream, err := book.Drawing().Stream(false)
		if err != nil {
			t.Fatalf("Stream(false): %v", err)
		}
		drawing, err := ParseDrawingStream(stream)
		if err != nil {
			t.Fatalf("ParseDrawingStream(no footer, %d pictures): %v", book.Drawing().TotalPictureCount(), err)
		}
		if drawing.Find(ESCHER_MRU_COLORS) != nil {
			t.Error("stream without footer carries the footer record")
		}
		group := drawing.Records[0]
		if group.Type != ESCHER_DGG_CONTAINER || len(drawing.Records) != 1 {
			t.Errorf("top-level records = %d, first %s", len(drawing.Records), EscherNameFromType(group.Type))
		}
		if store := drawing.Find(ESCHER_BSTORE_CONTAINER); store == nil || len(store.Children) != int(book.Drawing().TotalPictureCount()) {
			t.Errorf("picture store does not hold %d entries", book.Drawing().TotalPictureCount())
		}
	}
}

func TestPicturesAreIndependentCopies(t *testing.T) {
	data := sampleBytes(50)
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	if err := sheet.AddHeaderFooterPicture(writeSample(t, "logo.jpg", data), "CH", 1, 1, ""); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	_, before := streams(t, book)

	entries := sheet.Drawing().Pictures()
	entries[0].Asset.Bytes[0] ^= 0xFF
	entries[0].Asset.Bytes = append(entries[0].Asset.Bytes, 1, 2, 3)

	_, after := streams(t, book)
	if !bytes.Equal(after, before) {
		t.Error("editing a returned asset changed the book stream")
	}
	again := sheet.Drawing().Pictures()[0].Asset
	if !bytes.Equal(again.Bytes, data) || again.Digest != ComputeDigest(data) {
		t.Error("editing a returned asset changed the stored picture")
	}
	if total, err := book.Drawing().TotalPayloadSize(); err != nil || total != 50 {
		t.Errorf("TotalPayloadSize() = %d, %v, expected 50", total, err)
	}
}

func TestAddPictureCopiesAsset(t *testing.T) {
	asset, err := NewImageAsset("a.jpg", sampleBytes(10))
	if err != nil {
		t.Fatalf("NewImageAsset: %v", err)
	}
	anchor := PictureAnchor{Position: CenterHeader, WidthPx: 1, HeightPx: 1, Name: "a"}
	_, book, err := AddPicture(SheetDrawing{}, WorkbookDrawing{}, asset, anchor)
	if err != nil {
		t.Fatalf("AddPicture: %v", err)
	}
	before, err := book.Stream(true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	asset.Bytes[0] ^= 0xFF
	after, err := book.Stream(true)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("editing the caller's asset changed the book stream")
	}
}

func TestEmptyBookStreams(t *testing.T) {
	book := NewBook(nil)
	sheet := book.AddSheet("Sheet1")
	stream, err := sheet.DrawingStream()
	if err != nil || stream != nil {
		t.Errorf("DrawingStream() = % x, %v, expected nothing", stream, err)
	}
	stream, err = book.DrawingGroupStream()
	if err != nil || stream != nil {
		t.Errorf("DrawingGroupStream() = % x, %v, expected nothing", stream, err)
	}
}

func TestBookSheets(t *testing.T) {
	book := NewBook(nil)
	book.AddSheet("One")
	book.AddSheet("Two")

	if book.NSheets() != 2 {
		t.Errorf("NSheets() = %d, expected 2", book.NSheets())
	}
	if names := strings.Join(book.SheetNames(), ","); names != "One,Two" {
		t.Errorf("SheetNames() = %s, expected One,Two", names)
	}
	sheet, err := book.SheetByName("Two")
	if err != nil || sheet.Name != "Two" {
		t.Errorf("SheetByName(Two) = %v, %v", sheet, err)
	}
	if _, err := book.SheetByName("Three"); err == nil {
		t.Error("SheetByName(Three) should fail")
	}
	if _, err := book.SheetByIndex(2); err == nil {
		t.Error("SheetByIndex(2) should fail")
	}
	if sheet, err := book.SheetByIndex(0); err != nil || sheet.Name != "One" {
		t.Errorf("SheetByIndex(0) = %v, %v", sheet, err)
	}
}

func TestForeignSheetRejected(t *testing.T) {
	book := NewBook(nil)
	foreign := NewBook(nil).AddSheet("Elsewhere")
	if err := book.AddHeaderFooterPicture(foreign, "x.jpg", "CH", 1, 1, ""); err == nil {
		t.Error("AddHeaderFooterPicture with a sheet of another book should fail")
	}
}

func TestBookLogging(t *testing.T) {
	var log bytes.Buffer
	book := NewBook(&BookOptions{Logfile: &log, Verbosity: 2})
	sheet := book.AddSheet("Sheet1")
	if err := sheet.AddHeaderFooterPicture(writeSample(t, "logo.jpg", []byte("abc")), "CH", 1, 1, "Logo"); err != nil {
		t.Fatalf("AddHeaderFooterPicture: %v", err)
	}
	streams(t, book)

	s := log.String()
	for _, want := range []string{`sheet "Sheet1": picture 1`, "md4 a448017aaf21d8525fc10ae87aa6729d", "drawing group:", "1 record(s)"} {
		if !strings.Contains(s, want) {
			t.Errorf("log should contain %q, got:\n%s", want, s)
		}
	}
}
