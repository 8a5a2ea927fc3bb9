package utils

import "math/rand"

const (
	shortCodeAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	DefaultShortCodeLength = 8
)

// GenerateShortCode 生成 n 位小写字母数字随机串，不保证唯一，唯一性由数据库约束保证
func GenerateShortCode(n int) string {
	if n <= 0 {
		n = DefaultShortCodeLength
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = shortCodeAlphabet[rand.Intn(len(shortCodeAlphabet))]
	}
	return string(b)
}
