package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const peekSize = 2048

// readCSV auto-detects the encoding (UTF-8, Windows-1251, KOI8-R) and the
// delimiter (comma or semicolon) and returns every line.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(peekSize)
	cs := "utf-8"
	if len(peek) > 0 && !looksUTF8(peek, len(peek) == peekSize) {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	if enc := decoderFor(cs); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.Comma = sniffComma(peek) // es/ru locale Excel saves with ";"
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// looksUTF8 reports whether peek is valid UTF-8. When the buffer was filled
// to capacity a rune cut off at the end is ignored.
func looksUTF8(peek []byte, full bool) bool {
	if full {
		for i := 1; i < utf8.UTFMax && i <= len(peek); i++ {
			tail := peek[len(peek)-i:]
			if utf8.RuneStart(tail[0]) {
				if !utf8.FullRune(tail) {
					peek = peek[:len(peek)-i]
				}
				break
			}
		}
	}
	return utf8.Valid(peek)
}

// decoderFor maps a detected charset to a decoder; nil means the input is UTF-8.
func decoderFor(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	default:
		return nil
	}
}

// sniffComma picks ';' when the first line has more semicolons than commas,
// which is what spreadsheet programs emit in comma-decimal locales.
func sniffComma(peek []byte) rune {
	line := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		line = peek[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
