package protocol

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Delimiter separates the words of a canonical operation name.
const Delimiter = "_"

// Verb turns a canonical operation name into its wire verb: the first segment is
// kept as is, every following segment gets its first character upper-cased and
// the segments are joined with no separator.
//
//	fill_rect -> fillRect
//	arc_to    -> arcTo
//	save      -> save
func Verb(name string) string {
	if !strings.Contains(name, Delimiter) {
		return name
	}

	segments := strings.Split(name, Delimiter)
	var b strings.Builder
	b.Grow(len(name))
	b.WriteString(segments[0])
	for _, s := range segments[1:] {
		if s == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(s[size:])
	}
	return b.String()
}

// CorrelationToken renders a query id as sent on the wire.
func CorrelationToken(id uint64) string {
	return correlationPrefix + strconv.FormatUint(id, 10)
}

// ParseCorrelation reports whether token is a query id token and returns the id.
func ParseCorrelation(token string) (uint64, bool) {
	digits, ok := strings.CutPrefix(token, correlationPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
