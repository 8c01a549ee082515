// Package jsonenc encodes JSON with text left as written: no HTML escaping and
// no \u escapes for the line and paragraph separators.
package jsonenc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	lineSep   = "\xe2\x80\xa8" // U+2028
	paraSep   = "\xe2\x80\xa9" // U+2029
	replaceCh = "\xef\xbf\xbd" // U+FFFD
)

// Marshal encodes v with the given indent ("" for a single line). The result
// has no trailing newline. Invalid UTF-8 in strings comes out as a raw U+FFFD.
func Marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return unescapeRunes(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeRunes turns the U+2028, U+2029 and U+FFFD escapes that encoding/json
// always emits back into raw runes. A backslash escaped as \\ is literal text,
// so the "u" after it is never treated as an escape.
func unescapeRunes(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] != 'u' || i+6 > len(b) {
			out = append(out, b[i], b[i+1])
			i++
			continue
		}
		switch string(b[i+2 : i+6]) {
		case "2028":
			out = append(out, lineSep...)
		case "2029":
			out = append(out, paraSep...)
		case "fffd":
			out = append(out, replaceCh...)
		default:
			out = append(out, b[i:i+6]...)
		}
		i += 5
	}
	return out
}
