package observability

import (
	"net"
	"net/http"
	"strings"
)

// ClientContext is the per-request client metadata attached to outbound
// events: who sent the request, from where, on which device.
type ClientContext struct {
	RequestID string
	DeviceID  string
	IP        string
}

// ClientContextFromRequest extracts client metadata from gateway headers,
// falling back to the connection's remote address for the IP.
func ClientContextFromRequest(r *http.Request) ClientContext {
	return ClientContext{
		RequestID: r.Header.Get("X-Request-Id"),
		DeviceID:  r.Header.Get("X-Device-Id"),
		IP:        clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop in the chain is the originating client.
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
