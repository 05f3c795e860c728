package identifier

import (
	"regexp"
	"strings"
	"unicode"
)

// Separator joins identifier segments.
const Separator = "-"

var segmentedPattern = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

// FormatCommonID returns the canonical wire form of a common id:
// trimmed, upper-cased, with every run of whitespace, '_' or '-'
// collapsed into one '-' and no leading or trailing separator.
// Formatting is idempotent.
func FormatCommonID(value string) string {
	return canonical(value)
}

// FormatUniqueID applies the same canonical form to a unique id.
func FormatUniqueID(value string) string {
	return canonical(value)
}

func canonical(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	pendingSep := false
	for _, r := range strings.ToUpper(value) {
		if isSeparator(r) {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteString(Separator)
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

// segments splits a formatted id into its parts.
func segments(formatted string) []string {
	if formatted == "" {
		return nil
	}
	return strings.Split(formatted, Separator)
}
