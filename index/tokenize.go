package index

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s, splits on runs of non-alphanumeric code
// points, drops empty tokens and deduplicates while preserving first
// occurrence order.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) <= 1 {
		return fields
	}

	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, tok := range fields {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
