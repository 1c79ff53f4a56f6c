package s3

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Path markers that precede the user id and question number segments in
// upload keys, e.g. team12/interview_audio/{userID}/{question}/answer.webm.
var identityMarkers = []string{"interview_video", "interview_audio"}

var (
	// userFilenamePattern matches names like user12_question3 or userA-1_q2.
	userFilenamePattern = regexp.MustCompile(`(?i)user([a-zA-Z0-9_-]+)_(?:question|q)([0-9]+)`)
	// plainFilenamePattern matches names like 12_3 as a last resort.
	plainFilenamePattern = regexp.MustCompile(`^([a-zA-Z0-9_-]+)_([0-9]+)$`)
)

// ExtractUserInfo derives the user id and question number from an object key
// or s3:// URL. It first walks the path looking for an interview marker
// segment followed by the user id and a numeric question, then falls back to
// filename conventions. ok is false when no convention matches.
func ExtractUserInfo(objectKey string) (userID string, questionNum int, ok bool) {
	key := strings.TrimSpace(objectKey)
	if key == "" {
		return "", 0, false
	}
	if _, rest, err := ParseURL(key); err == nil {
		key = rest
	}

	parts := splitKey(key)
	for idx, part := range parts {
		if !isIdentityMarker(part) {
			continue
		}
		if idx+2 >= len(parts) {
			continue
		}
		question, err := strconv.Atoi(parts[idx+2])
		if err != nil {
			continue
		}
		return parts[idx+1], question, true
	}

	base := path.Base(key)
	name := strings.TrimSuffix(base, path.Ext(base))
	if m := userFilenamePattern.FindStringSubmatch(name); m != nil {
		question, err := strconv.Atoi(m[2])
		if err == nil {
			return m[1], question, true
		}
	}
	if m := plainFilenamePattern.FindStringSubmatch(name); m != nil {
		question, err := strconv.Atoi(m[2])
		if err == nil {
			return m[1], question, true
		}
	}
	return "", 0, false
}

// FormatURL renders an object key as a canonical s3:// URL for the given
// bucket. Keys that are already URLs pass through unchanged, and keys that
// redundantly start with the bucket name are normalized first.
func FormatURL(objectKey, bucket string) string {
	key := strings.TrimSpace(objectKey)
	if strings.HasPrefix(key, "s3://") {
		return key
	}
	key = strings.TrimPrefix(key, "/")
	if bucket != "" {
		key = strings.TrimPrefix(key, bucket+"/")
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// ParseURL splits an s3://bucket/key URL into its bucket and key parts.
func ParseURL(raw string) (bucket, key string, err error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "s3://") {
		return "", "", fmt.Errorf("parse s3 url: missing s3:// scheme in %q", raw)
	}
	rest := strings.TrimPrefix(trimmed, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("parse s3 url: expected s3://bucket/key, got %q", raw)
	}
	return bucket, key, nil
}

func splitKey(key string) []string {
	raw := strings.Split(strings.Trim(key, "/"), "/")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func isIdentityMarker(segment string) bool {
	for _, marker := range identityMarkers {
		if segment == marker {
			return true
		}
	}
	return false
}
