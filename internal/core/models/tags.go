package models

import "strings"

// AddTag appends a trimmed tag unless it is empty, already present (exact,
// case-sensitive match) or contains a comma, which ParseTags would split.
// The returned bool reports whether it was added.
func AddTag(tags []string, tag string) ([]string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.Contains(tag, ",") || HasTag(tags, tag) {
		return tags, false
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag), true
}

// RemoveTag drops the first exact match and keeps the order of the rest
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	removed := false
	for _, t := range tags {
		if !removed && t == tag {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}

// HasTag reports whether tag is present
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ParseTags splits comma separated input, trims each part and drops empties.
// "a, b ,,c" becomes [a b c]. Duplicates are kept.
func ParseTags(input string) []string {
	tags := []string{}
	for _, part := range strings.Split(input, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags for display in an input field
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
