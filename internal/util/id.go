package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// NewCommentID returns a timestamp-derived token. The nanosecond prefix keeps
// IDs roughly ordered by creation time; the random suffix covers same-instant
// calls.
func NewCommentID() string {
	bytes := make([]byte, 4)
	_, _ = rand.Read(bytes)
	return "c" + strconv.FormatInt(time.Now().UnixNano(), 36) + hex.EncodeToString(bytes)
}
