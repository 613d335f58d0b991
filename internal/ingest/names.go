package ingest

import "strings"

// SplitName breaks a raw report name into first/middle/last.
//
// "LAST, FIRST MIDDLE" splits on the first comma: the left side is the last
// name, the right side's first token is the first name and the rest joins
// into the middle name. Without a comma the string is read as
// "FIRST [MIDDLE...] LAST"; one token is a bare first name, two tokens have
// no middle name.
func SplitName(raw string) (first, middle, last string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ""
	}

	if before, after, found := strings.Cut(raw, ","); found {
		last = strings.Join(strings.Fields(before), " ")
		rest := strings.Fields(after)
		switch len(rest) {
		case 0:
			return "", "", last
		case 1:
			return rest[0], "", last
		default:
			return rest[0], strings.Join(rest[1:], " "), last
		}
	}

	parts := strings.Fields(raw)
	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1]
	}
}
