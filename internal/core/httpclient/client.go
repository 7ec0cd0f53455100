// Package httpclient configures the HTTP client used to call upstream services.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewOutbound creates a new outbound http client. The overall timeout is left
// to the caller: geocoding and geometry fetches want very different deadlines,
// so both are imposed per-request via context.
func NewOutbound() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}
