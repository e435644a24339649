package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "X-Forwarded-For single IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "127.0.0.1:12345",
			expected:   "203.0.113.1",
		},
		{
			name:       "X-Forwarded-For chain keeps first hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.2"},
			remoteAddr: "127.0.0.1:12345",
			expected:   "203.0.113.1",
		},
		{
			name:       "X-Real-IP",
			headers:    map[string]string{"X-Real-IP": " 198.51.100.7 "},
			remoteAddr: "127.0.0.1:12345",
			expected:   "198.51.100.7",
		},
		{
			name:       "no proxy headers",
			headers:    map[string]string{},
			remoteAddr: "192.0.2.10:4000",
			expected:   "192.0.2.10:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("Expected RemoteAddr %s, got %s", tt.expected, got)
			}
		})
	}
}
