package queue

import (
	"fmt"
	"path/filepath"
	"strings"
)

// WorkRoot returns the per-item working directory rooted at base. When user
// and question identity are known they are used; otherwise it falls back to
// item-{ID} to avoid collisions.
func (i Item) WorkRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := fmt.Sprintf("item-%d", i.ID)
	if user := strings.TrimSpace(i.UserID); user != "" && i.QuestionNum > 0 {
		segment = fmt.Sprintf("user%s-q%d-%d", user, i.QuestionNum, i.ID)
	}
	return filepath.Join(base, sanitizeSegment(segment))
}

func sanitizeSegment(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-_")
	if cleaned == "" {
		return "item"
	}
	return cleaned
}
