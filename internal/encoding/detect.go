package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset is the IANA name of a text encoding.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO885915   Charset = "ISO-8859-15"
)

const (
	sniffLen = 4096

	// chardet scores 0-100; below this its guess is noise on short files.
	minConfidence = 50
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// multiByte lists the chardet results trusted over the Latin fallback.
var multiByte = map[string]bool{
	"UTF-16LE":  true,
	"UTF-16BE":  true,
	"Shift_JIS": true,
	"EUC-JP":    true,
	"EUC-KR":    true,
	"Big5":      true,
}

// NewUTF8Reader decodes r to UTF-8 from the charset Detect picks for its
// first bytes. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	cs := Detect(buf)
	if cs == UTF8 {
		if bytes.HasPrefix(buf, bomUTF8) {
			_, _ = br.Discard(len(bomUTF8))
		}

		return br, nil
	}

	return transform.NewReader(br, decoding(cs).NewDecoder()), nil
}

// Detect names the charset of a file from its leading bytes.
//
// Byte order marks win, then valid UTF-8. Bank and receipt exports that
// are neither are almost always single-byte Western European, so chardet
// is only believed when it confidently reports a multi-byte charset.
func Detect(buf []byte) Charset {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return UTF8
	case bytes.HasPrefix(buf, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(buf, bomUTF16BE):
		return UTF16BE
	case validUTF8(buf):
		return UTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil && res.Confidence >= minConfidence && multiByte[res.Charset] {
		if decoding(Charset(res.Charset)) != nil {
			return Charset(res.Charset)
		}
	}

	return latinVariant(buf)
}

// validUTF8 reports whether buf is UTF-8, allowing the sniff window to end
// inside a multi-byte sequence.
func validUTF8(buf []byte) bool {
	end := len(buf)

	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				end = len(buf) - i
			}

			break
		}
	}

	return utf8.Valid(buf[:end])
}

// latinVariant tells Windows-1252 from ISO-8859-15. Both carry æ, ø and å
// at the same code points; they part on the euro sign, which is 0x80 in
// Windows-1252 and 0xA4 in ISO-8859-15, where 0x80-0x9F are control codes.
func latinVariant(buf []byte) Charset {
	euro := false

	for _, b := range buf {
		switch {
		case b >= 0x80 && b <= 0x9F:
			return Windows1252
		case b == 0xA4:
			euro = true
		}
	}

	if euro {
		return ISO885915
	}

	return Windows1252
}

func decoding(cs Charset) xenc.Encoding {
	switch cs {
	case UTF8:
		return xenc.Nop
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case Windows1252:
		return charmap.Windows1252
	case ISO885915:
		return charmap.ISO8859_15
	}

	e, err := ianaindex.IANA.Encoding(string(cs))
	if err != nil {
		return nil
	}

	return e
}
