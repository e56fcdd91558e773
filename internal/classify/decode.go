package classify

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidEncoding is returned in strict mode when content is not valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// DecodeMode selects how invalid UTF-8 is handled.
type DecodeMode string

const (
	// DecodeIgnore drops invalid byte sequences.
	DecodeIgnore DecodeMode = "ignore"
	// DecodeReplace substitutes U+FFFD for invalid byte sequences.
	DecodeReplace DecodeMode = "replace"
	// DecodeStrict rejects content with invalid byte sequences.
	DecodeStrict DecodeMode = "strict"
)

// ParseDecodeMode validates a mode name.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch m := DecodeMode(strings.ToLower(s)); m {
	case DecodeIgnore, DecodeReplace, DecodeStrict:
		return m, nil
	case "":
		return DecodeIgnore, nil
	default:
		return "", fmt.Errorf("unknown decode mode %q", s)
	}
}

// Decode turns raw file bytes into text. Line endings are normalized to "\n".
func Decode(raw []byte, mode DecodeMode) (string, error) {
	var text string
	switch mode {
	case DecodeStrict:
		if !utf8.Valid(raw) {
			return "", ErrInvalidEncoding
		}
		text = string(raw)
	case DecodeReplace:
		decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode content: %w", err)
		}
		text = string(decoded)
	case DecodeIgnore, "":
		text = strings.ToValidUTF8(string(raw), "")
	default:
		return "", fmt.Errorf("unknown decode mode %q", mode)
	}
	return normalizeNewlines(text), nil
}

func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// CountLines counts lines the way text line splitting does: a trailing line break
// does not open an extra empty line and empty content has no lines.
func CountLines(s string) int {
	lines := 0
	pending := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if isLineBreak(r) {
			if r == '\r' && i < len(s) && s[i] == '\n' {
				i++
			}
			lines++
			pending = false
			continue
		}
		pending = true
	}
	if pending {
		lines++
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
