package script

import (
	"fmt"
	"strings"
	"unicode/utf8"

	nsiderr "github.com/terassyi/nsid/internal/errors"
	"golang.org/x/text/encoding/charmap"
)

// Encoding is the character encoding of a generated script.
type Encoding string

const (
	// UTF8 scripts start with a byte order mark and declare Unicode true.
	UTF8 Encoding = "utf8"
	// CP1252 scripts are ANSI (Windows-1252) and declare Unicode false.
	CP1252 Encoding = "cp1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding parses an encoding name. An empty string yields UTF8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "", "utf8":
		return UTF8, nil
	case "cp1252", "windows1252", "ansi":
		return CP1252, nil
	default:
		return "", fmt.Errorf("unknown encoding %q (expected utf8 or cp1252)", s)
	}
}

// Directive returns the NSIS Unicode directive for the encoding.
func (e Encoding) Directive() string {
	if e == CP1252 {
		return "Unicode false"
	}
	return "Unicode true"
}

// Check reports the first character of value that the encoding cannot
// represent. Nothing is substituted; a best-fit mapping would silently
// change paths and registry data.
func (e Encoding) Check(field, value string) error {
	switch e {
	case UTF8:
		if !utf8.ValidString(value) {
			for i, r := range value {
				if r == utf8.RuneError {
					return nsiderr.NewUnsupportedCharacterError(string(e), field, value, r, i)
				}
			}
		}
		return nil
	case CP1252:
		enc := charmap.Windows1252
		for i, r := range value {
			if _, ok := enc.EncodeRune(r); !ok || r == utf8.RuneError {
				return nsiderr.NewUnsupportedCharacterError(string(e), field, value, r, i)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown encoding %q", string(e))
	}
}

// Encode converts a rendered script to file bytes. UTF-8 output carries a
// byte order mark so makensis detects it.
func (e Encoding) Encode(text string) ([]byte, error) {
	if err := e.Check("script", text); err != nil {
		return nil, err
	}
	switch e {
	case CP1252:
		out := make([]byte, 0, len(text))
		for _, r := range text {
			b, _ := charmap.Windows1252.EncodeRune(r)
			out = append(out, b)
		}
		return out, nil
	default:
		out := make([]byte, 0, len(utf8BOM)+len(text))
		out = append(out, utf8BOM...)
		return append(out, text...), nil
	}
}

// Decode converts script bytes back to text, stripping a UTF-8 byte order
// mark.
func (e Encoding) Decode(data []byte) (string, error) {
	switch e {
	case CP1252:
		b, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		if len(data) >= len(utf8BOM) && string(data[:len(utf8BOM)]) == string(utf8BOM) {
			data = data[len(utf8BOM):]
		}
		return string(data), nil
	}
}
