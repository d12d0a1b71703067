package source

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Decode converts raw script bytes in the named encoding (WHATWG label,
// e.g. "shift_jis", "windows-1251") to UTF-8 text. An empty name means the
// input is already UTF-8; a leading byte order mark is dropped.
func Decode(data []byte, encoding string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("source is not valid UTF-8; set an encoding")
		}
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unknown source encoding %q: %w", encoding, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s source: %w", encoding, err)
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), nil
}
