package xlwt

import (
	"errors"
	"fmt"
	"io"
)

// XLWTError represents a caller contract error raised while building records.
type XLWTError struct {
	Message string
}

func (e *XLWTError) Error() string {
	return e.Message
}

// NewXLWTError creates a new XLWTError with the given message.
func NewXLWTError(format string, args ...interface{}) *XLWTError {
	return &XLWTError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidPositionCode indicates a page position that is not one of
// {L,C,R} followed by one of {H,F}.
var ErrInvalidPositionCode = errors.New("invalid header/footer position code")

// ErrUnsupportedPictureCount indicates a picture count outside the range the
// drawing group offsets are known to be correct for.
var ErrUnsupportedPictureCount = errors.New("unsupported picture count")

// ErrFieldOverflow indicates a computed length or counter that does not fit
// its record field.
var ErrFieldOverflow = errors.New("record field overflow")

// ErrMultipleDrawingSheets indicates an attempt to add header/footer pictures
// to more than one sheet of the same book.
var ErrMultipleDrawingSheets = errors.New("header/footer pictures already belong to another sheet")

// ErrMalformedRecord indicates a drawing stream that cannot be decoded.
var ErrMalformedRecord = errors.New("malformed drawing record")

// AssetReadError is returned when the picture file cannot be opened or read.
type AssetReadError struct {
	Path string
	Err  error
}

func (e *AssetReadError) Error() string {
	return fmt.Sprintf("reading picture %q: %v", e.Path, e.Err)
}

func (e *AssetReadError) Unwrap() error {
	return e.Err
}

// overflowError reports which field overflowed and by what value.
func overflowError(field string, value uint64, limit uint64) error {
	return fmt.Errorf("%w: %s = %d exceeds %d", ErrFieldOverflow, field, value, limit)
}

// BIFF record type constants
const (
	XL_CONTINUE          = 0x3c
	XL_MSO_DRAWING       = 0x00EC
	XL_MSO_DRAWING_GROUP = 0x00EB
	XL_HFPICTURE         = 0x0866
)

// Office drawing (escher) record type constants
const (
	ESCHER_DGG_CONTAINER     = 0xF000
	ESCHER_BSTORE_CONTAINER  = 0xF001
	ESCHER_DG_CONTAINER      = 0xF002
	ESCHER_SPGR_CONTAINER    = 0xF003
	ESCHER_SP_CONTAINER      = 0xF004
	ESCHER_DGG               = 0xF006
	ESCHER_BSE               = 0xF007
	ESCHER_DG                = 0xF008
	ESCHER_SPGR              = 0xF009
	ESCHER_SP                = 0xF00A
	ESCHER_OPT               = 0xF00B
	ESCHER_CLIENT_ANCHOR     = 0xF010
	ESCHER_BLIP_JPEG         = 0xF01D
	ESCHER_SPLIT_MENU_COLORS = 0xF11E
	ESCHER_MRU_COLORS        = 0xF1E1
)

// Record framing limits
const (
	// MaxRecordData is the largest data size of a single BIFF8 record.
	MaxRecordData    = 0x2020
	// MaxContinueData is the chunk size carried by each continuation record;
	// the remaining bytes of a full record hold the continuation marker.
	MaxContinueData  = 0x2012
	// continueOverhead is the size of the marker between a continuation
	// record's length field and its chunk, and so is added to the chunk
	// length.
	continueOverhead = 0xe
	// continueFlag is the literal closing each continuation marker.
	continueFlag     = 0x0006
)

// MaxPictures is the largest number of pictures the drawing group offsets
// are valid for.
const MaxPictures = 2

var escherNames = map[uint16]string{
	ESCHER_DGG_CONTAINER:     "DggContainer",
	ESCHER_BSTORE_CONTAINER:  "BStoreContainer",
	ESCHER_DG_CONTAINER:      "DgContainer",
	ESCHER_SPGR_CONTAINER:    "SpgrContainer",
	ESCHER_SP_CONTAINER:      "SpContainer",
	ESCHER_DGG:               "Dgg",
	ESCHER_BSE:               "BSE",
	ESCHER_DG:                "Dg",
	ESCHER_SPGR:              "Spgr",
	ESCHER_SP:                "Sp",
	ESCHER_OPT:               "Opt",
	ESCHER_CLIENT_ANCHOR:     "ClientAnchor",
	ESCHER_BLIP_JPEG:         "BlipJPEG",
	ESCHER_SPLIT_MENU_COLORS: "SplitMenuColors",
	ESCHER_MRU_COLORS:        "MRUColors",
}

// EscherNameFromType returns a text representation of a drawing record type.
func EscherNameFromType(recType uint16) string {
	if name, ok := escherNames[recType]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04x)", recType)
}

// IsEscherContainer checks if the given record type holds child records.
func IsEscherContainer(recType uint16) bool {
	return recType >= ESCHER_DGG_CONTAINER && recType <= ESCHER_SP_CONTAINER
}

// logf writes a diagnostic line if the verbosity is at least level.
func logf(w io.Writer, verbosity, level int, format string, args ...interface{}) {
	if w == nil || verbosity < level {
		return
	}
	fmt.Fprintf(w, format, args...)
}
