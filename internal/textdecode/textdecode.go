// Package textdecode converts console utility output from the host's legacy
// code page into UTF-8.
package textdecode

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// CodePage is a Windows code page identifier.
type CodePage uint32

// Code pages understood by the decoder.
const (
	CodePageOEMUS      CodePage = 437
	CodePageOEMLatin1  CodePage = 850
	CodePageOEMLatin2  CodePage = 852
	CodePageOEMRussian CodePage = 866
	CodePageShiftJIS   CodePage = 932
	CodePageGBK        CodePage = 936
	CodePageKorean     CodePage = 949
	CodePageBig5       CodePage = 950
	CodePageWin1250    CodePage = 1250
	CodePageWin1251    CodePage = 1251
	CodePageWin1252    CodePage = 1252
	CodePageUTF8       CodePage = 65001

	// DefaultCodePage is used when the host code page cannot be determined.
	DefaultCodePage = CodePageShiftJIS
)

// ErrUnsupportedCodePage is returned for code pages with no known encoding.
var ErrUnsupportedCodePage = errors.New("textdecode: unsupported code page")

var encodings = map[CodePage]encoding.Encoding{
	CodePageOEMUS:      charmap.CodePage437,
	CodePageOEMLatin1:  charmap.CodePage850,
	CodePageOEMLatin2:  charmap.CodePage852,
	CodePageOEMRussian: charmap.CodePage866,
	CodePageShiftJIS:   japanese.ShiftJIS,
	CodePageGBK:        simplifiedchinese.GBK,
	CodePageKorean:     korean.EUCKR,
	CodePageBig5:       traditionalchinese.Big5,
	CodePageWin1250:    charmap.Windows1250,
	CodePageWin1251:    charmap.Windows1251,
	CodePageWin1252:    charmap.Windows1252,
	CodePageUTF8:       unicode.UTF8,
}

// String returns the numeric form, e.g. "932".
func (cp CodePage) String() string {
	return strconv.FormatUint(uint64(cp), 10)
}

// Supported reports whether cp has a decoder.
func (cp CodePage) Supported() bool {
	_, ok := encodings[cp]
	return ok
}

// ParseCodePage parses a numeric code page such as "932".
func ParseCodePage(s string) (CodePage, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCodePage, s)
	}
	cp := CodePage(n)
	if !cp.Supported() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedCodePage, n)
	}
	return cp, nil
}

func lookup(cp CodePage) (encoding.Encoding, error) {
	enc, ok := encodings[cp]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCodePage, uint32(cp))
	}
	return enc, nil
}

// Decode converts b from code page cp to a UTF-8 string. Transcoding errors
// are returned as-is.
func Decode(b []byte, cp CodePage) (string, error) {
	enc, err := lookup(cp)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("textdecode: decode code page %d: %w", uint32(cp), err)
	}
	return string(out), nil
}

// NewReader wraps r so that reads yield UTF-8. Multi-byte sequences split
// across reads of r are reassembled by the underlying transformer.
func NewReader(r io.Reader, cp CodePage) (io.Reader, error) {
	enc, err := lookup(cp)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(r), nil
}
