package bulk

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_\.]+$`)

// QuoteIdentifier wraps a MySQL identifier in backticks, doubling any
// backtick inside it.
func QuoteIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// IsValidIdentifier checks that the identifier only uses alphanumerics,
// underscores and dots (for schema.table names).
func IsValidIdentifier(identifier string) bool {
	return identifierPattern.MatchString(identifier)
}
