package bulk

import (
	"fmt"
	"strings"
)

var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
	"'", `\'`,
	`"`, `\"`,
)

// Escape neutralizes the characters that could break out of a single-quoted
// MySQL string literal. It works on the string alone and never consults a
// connection, so the output is the same whatever the session charset is.
func Escape(s string) string {
	return literalReplacer.Replace(s)
}

// Quote escapes s and wraps it in single quotes.
func Quote(s string) string {
	return "'" + Escape(s) + "'"
}

// Literal formats a value for inclusion in generated SQL: nil becomes NULL,
// strings (and byte slices) are escaped and quoted, everything else,
// including Raw, is written verbatim.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return Quote(val)
	case []byte:
		return Quote(string(val))
	case Raw:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// keyLiteral always quotes, because key values are only ever compared.
// A nil key compares against the empty string.
func keyLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "''"
	case string:
		return Quote(val)
	case []byte:
		return Quote(string(val))
	default:
		return Quote(fmt.Sprint(val))
	}
}
