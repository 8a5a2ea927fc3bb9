package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code := GenerateShortCode(8)
		assert.Len(t, code, 8)
		assert.Regexp(t, `^[a-z0-9]{8}$`, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)

	assert.Len(t, GenerateShortCode(0), DefaultShortCodeLength)
	assert.Len(t, GenerateShortCode(12), 12)
}

func TestValidateShortCode(t *testing.T) {
	assert.NoError(t, ValidateShortCode("abc123xy"))
	assert.Error(t, ValidateShortCode(""))
	assert.Error(t, ValidateShortCode("abc 123"))
	assert.Error(t, ValidateShortCode("../etc"))
	assert.Error(t, ValidateShortCode("a-b"))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://example.com/path?q=1"))
	assert.True(t, IsHTTPURL("http://localhost:8080"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
	assert.False(t, IsHTTPURL("example.com"))
	assert.False(t, IsHTTPURL("javascript:alert(1)"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "你好", TruncateRunes("你好世界", 2))
	assert.Equal(t, "", TruncateRunes("abc", 0))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "forwarded for takes first entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2", "X-Real-IP": "198.51.100.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip when no forwarded for",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "198.51.100.1",
		},
		{
			name:       "connection address",
			remoteAddr: "192.0.2.10:5555",
			want:       "192.0.2.10",
		},
		{
			name:       "ipv6 connection address",
			remoteAddr: "[::1]:5555",
			want:       "::1",
		},
		{
			name: "loopback default",
			want: LoopbackIPv4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestLookupIP(t *testing.T) {
	assert.Equal(t, "127.0.0.1", LookupIP("::1"))
	assert.Equal(t, "8.8.8.8", LookupIP("8.8.8.8"))
}
