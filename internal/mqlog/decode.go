package mqlog

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MetaEditor writes its log as UTF-16LE, usually with a BOM, sometimes
// without one. Decode sniffs the encoding and falls back to treating the
// bytes as UTF-8 when nothing points at UTF-16.
func Decode(raw []byte) (string, error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case looksUTF16LE(raw):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	default:
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		// Degrade to the raw bytes; the parser treats whatever it gets
		// as passthrough text rather than failing the whole run.
		return string(raw), err
	}
	return string(decoded), nil
}

// looksUTF16LE detects BOM-less UTF-16LE by the NUL high bytes that ASCII
// log text produces in odd positions.
func looksUTF16LE(raw []byte) bool {
	if len(raw) < 4 || len(raw)%2 != 0 {
		return false
	}
	zeros := 0
	limit := min(len(raw), 64)
	for i := 1; i < limit; i += 2 {
		if raw[i] == 0 {
			zeros++
		}
	}
	return zeros > limit/4
}
