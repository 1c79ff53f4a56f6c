package mariadb

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// evaluationID builds a deterministic row id from the interview identity so
// re-running an analysis replaces its earlier rows. The layout is
// {user}0{question}{suffix} with suffix 0 meaning the answer-level row.
func evaluationID(userID string, questionNum, suffix int) int64 {
	userNum, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || userNum < 0 {
		userNum = int64(hashID(userID)%999) + 1
	}
	if questionNum > 99 {
		questionNum = questionNum%99 + 1
	}

	composed := fmt.Sprintf("%d0%d", userNum, questionNum)
	if suffix > 0 {
		composed += strconv.Itoa(suffix)
	}
	id, err := strconv.ParseInt(composed, 10, 64)
	if err != nil {
		// Composed digits overflowed int64, fall back to a bounded hash.
		return int64(hashID(fmt.Sprintf("%s_%d_%d", userID, questionNum, suffix)) % 1e10)
	}
	return id
}

// normalizeUserID reduces a user id to the numeric prefix used in row ids.
func normalizeUserID(userID string) int64 {
	userNum, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || userNum < 0 {
		return int64(hashID(userID)%999) + 1
	}
	if userNum > 99999 {
		return userNum%99999 + 1
	}
	return userNum
}

func hashID(value string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(value))
	return h.Sum64()
}
