package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "socket ipv4", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "socket ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4", remote: "[::ffff:192.0.2.9]:80", want: "192.0.2.9"},
		{name: "headers ignored without trust", remote: "192.0.2.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, want: "192.0.2.1"},
		{name: "xff first entry", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"}, trustProxy: true, want: "203.0.113.5"},
		{name: "real ip", remote: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": "203.0.113.6"}, trustProxy: true, want: "203.0.113.6"},
		{name: "garbage xff falls back", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "nope"}, trustProxy: true, want: "10.0.0.1"},
		{name: "unparseable socket", remote: "pipe", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractClientIP(r, tt.trustProxy))
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, IsPrivateIP("10.1.2.3"))
	assert.True(t, IsPrivateIP("127.0.0.1"))
	assert.True(t, IsPrivateIP("::1"))
	assert.False(t, IsPrivateIP("203.0.113.5"))
	assert.False(t, IsPrivateIP("bogus"))
}
