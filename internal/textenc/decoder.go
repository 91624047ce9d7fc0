package textenc

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding tags reported on DecodedText. Exactly these five values occur.
const (
	EncodingUTF8BOM   = "utf-8-bom"
	EncodingUTF8      = "utf-8"
	EncodingCP1250    = "windows-1250"
	EncodingISO88592  = "iso-8859-2"
	EncodingUTF8Lossy = "utf-8-lossy"
)

// Confidence tiers for a decode result
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DecodedText is a byte buffer interpreted as text under a chosen encoding
type DecodedText struct {
	Text             string `json:"-"`
	Encoding         string `json:"encoding"`
	Confidence       string `json:"confidence"`
	HasExtendedChars bool   `json:"has_extended_chars"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// polishChars matches the Polish accented letters; their presence is a
// sanity signal that a legacy decode picked the right code page.
var polishChars = regexp.MustCompile(`[ąćęłńóśźżĄĆĘŁŃÓŚŹŻ]`)

// Byte values that decode to Polish letters in exactly one of the two
// legacy code pages (ą Ą ś Ś ź Ź differ between them; most others agree).
var (
	cp1250Hints   = []byte{0xB9, 0xA5, 0x9C, 0x8C, 0x9F, 0x8F}
	iso88592Hints = []byte{0xB1, 0xA1, 0xB6, 0xA6, 0xBC, 0xAC}
)

// Decode interprets raw upload bytes as text. It is a total function: the
// cascade always terminates in a permissive UTF-8 decode, so the caller
// never sees an error, only a lower confidence tier.
//
// Cascade order: UTF-8 BOM, strict UTF-8, then the two Polish legacy code
// pages ordered by indicator-byte frequency, then lossy UTF-8.
func Decode(raw []byte) DecodedText {
	// 1. BOM: strip and decode strictly
	if bytes.HasPrefix(raw, utf8BOM) {
		body := raw[len(utf8BOM):]
		if s := string(body); utf8.Valid(body) && !strings.ContainsRune(s, utf8.RuneError) {
			return result(s, EncodingUTF8BOM, ConfidenceHigh)
		}
		// BOM present but body is not clean UTF-8; keep cascading on the body
		raw = body
	}

	// 2. Strict UTF-8; a pre-existing replacement character means some
	// earlier tool already mangled the file, so don't trust it.
	if s := string(raw); utf8.Valid(raw) && !strings.ContainsRune(s, utf8.RuneError) {
		return result(s, EncodingUTF8, ConfidenceHigh)
	}

	// 3. Byte-frequency analysis decides which legacy code page to try first
	first, second := legacyOrder(raw)

	// 4./5. Legacy attempts; charmap decoders are total but emit U+FFFD for
	// undefined code points, which we treat as a failed attempt.
	for _, enc := range []string{first, second} {
		if s, ok := tryCharmap(raw, enc); ok {
			conf := ConfidenceMedium
			if polishChars.MatchString(s) {
				conf = ConfidenceHigh
			}
			return result(s, enc, conf)
		}
	}

	// 6. Last resort: permissive UTF-8, invalid sequences replaced
	return result(strings.ToValidUTF8(string(raw), string(utf8.RuneError)), EncodingUTF8Lossy, ConfidenceLow)
}

// legacyOrder counts code-page-specific indicator bytes over the whole
// buffer and returns the two legacy encodings, most likely first.
func legacyOrder(raw []byte) (string, string) {
	cp, iso := 0, 0
	for _, b := range raw {
		if bytes.IndexByte(cp1250Hints, b) >= 0 {
			cp++
		}
		if bytes.IndexByte(iso88592Hints, b) >= 0 {
			iso++
		}
	}
	if iso > cp {
		return EncodingISO88592, EncodingCP1250
	}
	return EncodingCP1250, EncodingISO88592
}

// tryCharmap decodes raw under the named legacy encoding. ok is false when
// the output contains a replacement character.
func tryCharmap(raw []byte, encoding string) (string, bool) {
	cm := charmap.Windows1250
	if encoding == EncodingISO88592 {
		cm = charmap.ISO8859_2
	}
	decoded, err := cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func result(text, encoding, confidence string) DecodedText {
	return DecodedText{
		Text:             text,
		Encoding:         encoding,
		Confidence:       confidence,
		HasExtendedChars: polishChars.MatchString(text),
	}
}
