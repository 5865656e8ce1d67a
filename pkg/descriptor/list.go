package descriptor

import "strings"

// listDelimiters are the characters accepted between entries of a URL or
// recipient list. Download clients historically accepted any mix of
// commas, whitespace, semicolons and pipes.
const listDelimiters = ", \t\r\n;|"

// SplitList breaks a delimited string into its individual entries,
// preserving order and duplicates. Empty entries are discarded. Each
// returned entry still needs to be parsed on its own; one malformed
// entry must never abort handling of its siblings.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(listDelimiters, r)
	})
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			result = append(result, f)
		}
	}
	return result
}
