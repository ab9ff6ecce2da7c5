package xlwt

import (
	"fmt"
	"strings"
)

// PositionCode places a picture within the page header or footer. The first
// letter is the horizontal section (L, C or R), the second the zone (H for
// header, F for footer). The matching header or footer text must contain the
// "&G" placeholder for the picture to show.
type PositionCode string

// Valid position codes.
const (
	LeftHeader   PositionCode = "LH"
	CenterHeader PositionCode = "CH"
	RightHeader  PositionCode = "RH"
	LeftFooter   PositionCode = "LF"
	CenterFooter PositionCode = "CF"
	RightFooter  PositionCode = "RF"
)

// ParsePositionCode upper-cases s and checks it names a header/footer section.
func ParsePositionCode(s string) (PositionCode, error) {
	code := strings.ToUpper(s)
	if len(code) != 2 || !strings.ContainsRune("LCR", rune(code[0])) || !strings.ContainsRune("HF", rune(code[1])) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPositionCode, s)
	}
	return PositionCode(code), nil
}

// IsHeader reports whether the picture goes in the page header.
func (p PositionCode) IsHeader() bool {
	return len(p) == 2 && p[1] == 'H'
}

// PictureAnchor describes where and how large a header/footer picture is drawn.
type PictureAnchor struct {
	Position PositionCode
	WidthPx  uint32
	HeightPx uint32
	Name     string
}

// NewPictureAnchor validates the position and returns an anchor.
func NewPictureAnchor(position string, widthPx, heightPx uint32, name string) (PictureAnchor, error) {
	code, err := ParsePositionCode(position)
	if err != nil {
		return PictureAnchor{}, err
	}
	return PictureAnchor{
		Position: code,
		WidthPx:  widthPx,
		HeightPx: heightPx,
		Name:     name,
	}, nil
}
