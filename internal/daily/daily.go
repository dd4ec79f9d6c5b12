package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// CategoryIndex returns a deterministic index for a date using
// HMAC(salt, YYYY-MM-DD) % numCategories, so every player gets the same
// category of the day.
func CategoryIndex(date time.Time, salt string, numCategories int) int {
	if numCategories <= 0 {
		return 0
	}
	n := digest(date, salt)
	return int(n % uint64(numCategories))
}

// Seed returns a deterministic rng seed for a date, used to make the
// computer opponent's medium policy reproducible within one day.
func Seed(date time.Time, salt string) int64 {
	return int64(digest(date, salt+"|seed"))
}

func digest(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}
