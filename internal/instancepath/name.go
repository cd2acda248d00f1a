package instancepath

import (
	"fmt"
	"strings"
)

// needsBrackets reports whether segment cannot be used as a dotted member.
// Only spaces are checked.
func needsBrackets(segment string) bool {
	return strings.Contains(segment, " ")
}

// FormatName returns the member-access token for segment: the segment itself
// when it can be dotted, or a bracketed string index otherwise.
func FormatName(segment string) string {
	if needsBrackets(segment) {
		return fmt.Sprintf("[\"%s\"]", segment)
	}
	return segment
}

// appendMember writes segment to b as a member access.
func appendMember(b *strings.Builder, segment string) {
	if !needsBrackets(segment) {
		b.WriteByte('.')
	}
	b.WriteString(FormatName(segment))
}
