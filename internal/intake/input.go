// internal/intake/input.go
package intake

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SanitizeInput схлопывает любые пробельные символы в один пробел.
func SanitizeInput(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FixEncoding repairs text that arrived as windows-1251 bytes.
func FixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	fixed, err := charmap.Windows1251.NewDecoder().String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	// не получилось: выбрасываем битые байты
	return strings.ToValidUTF8(s, "")
}

// Normalize prepares a raw chat message for Session.Handle.
func Normalize(raw string) string {
	return SanitizeInput(FixEncoding(raw))
}
