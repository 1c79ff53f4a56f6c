package mariadb

import "testing"

func TestEvaluationIDComposesUserAndQuestion(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		q      int
		suffix int
		want   int64
	}{
		{name: "answer row", userID: "2", q: 3, suffix: 0, want: 203},
		{name: "category row", userID: "2", q: 3, suffix: 1, want: 2031},
		{name: "larger user", userID: "42", q: 7, suffix: 0, want: 4207},
		{name: "question wraps past 99", userID: "5", q: 150, suffix: 0, want: 5052},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := evaluationID(tc.userID, tc.q, tc.suffix); got != tc.want {
				t.Fatalf("evaluationID(%q, %d, %d) = %d, want %d", tc.userID, tc.q, tc.suffix, got, tc.want)
			}
		})
	}
}

func TestEvaluationIDIsDeterministicForNonNumericUsers(t *testing.T) {
	first := evaluationID("userA-1", 3, 0)
	second := evaluationID("userA-1", 3, 0)
	if first != second {
		t.Fatalf("ids differ: %d vs %d", first, second)
	}
	if first <= 0 {
		t.Fatalf("id = %d, want positive", first)
	}
	if other := evaluationID("userB-2", 3, 0); other == first {
		t.Fatal("distinct users should get distinct ids")
	}
}

func TestNormalizeUserIDClampsLargeValues(t *testing.T) {
	if got := normalizeUserID("42"); got != 42 {
		t.Fatalf("normalizeUserID(42) = %d", got)
	}
	if got := normalizeUserID("12345678"); got > 100000 || got <= 0 {
		t.Fatalf("normalizeUserID large = %d, want clamped positive", got)
	}
	if got := normalizeUserID("alice"); got <= 0 || got > 999 {
		t.Fatalf("normalizeUserID(alice) = %d, want 1..999", got)
	}
}
