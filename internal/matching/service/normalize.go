package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize turns a raw cell value into the comparison key: NFC, lower case,
// letters/digits/whitespace only, tokens sorted and joined by one space.
// nil and NaN give "".
func Normalize(raw any) string {
	s, ok := cellString(raw)
	if !ok || s == "" {
		return ""
	}
	// NFC first, otherwise a decomposed "é" loses its accent as a stray mark
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = stripPunct(s)
	// dropping punctuation can leave composable runs side by side (Hangul jamo)
	s = norm.NFC.String(s)
	return tokenSort(s)
}

// cellString converts a spreadsheet value to text. false means null.
func cellString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(x)) {
			return "", false
		}
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// stripPunct drops everything except letters, numbers and whitespace of any script.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// tokenSort makes "ana maria" and "maria ana" identical.
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}
