package utils

import (
	"net"
	"net/http"
	"strings"
)

const LoopbackIPv4 = "127.0.0.1"

// ClientIP 依次取 X-Forwarded-For 第一个地址、X-Real-IP、连接地址，都没有时返回 127.0.0.1
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" {
		return xRealIP
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return LoopbackIPv4
}

// LookupIP IPv6 回环地址转换为 IPv4，用于 IP 库查询
func LookupIP(ip string) string {
	if ip == "::1" {
		return LoopbackIPv4
	}
	return ip
}
