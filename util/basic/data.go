package basic

import (
	"encoding/hex"
	"github.com/cespare/xxhash/v2"
)

// Digest 返回数据块的xxhash64十六进制摘要, 用于日志与证据标识.
func Digest(b []byte) string {
	sum := xxhash.Sum64(b)
	raw := []byte{
		byte(sum >> 56), byte(sum >> 48), byte(sum >> 40), byte(sum >> 32),
		byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum),
	}
	return hex.EncodeToString(raw)
}

// MaxInt64 返回两数中较大者.
func MaxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// MinInt64 返回两数中较小者.
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
