package transport

import (
	"net"
	"net/http"
	"time"
)

// UserAgent добавляется в начало заголовка User-Agent всех исходящих запросов.
const UserAgent = "physicstutor/1.0"

// NewHTTPClient возвращает http.Client с таймаутом и базовым транспортом.
// Клиент общий на весь процесс и после создания не меняется.
func NewHTTPClient(timeout time.Duration) *http.Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{next: base},
	}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ua := UserAgent
	if existing := req.Header.Get("User-Agent"); existing != "" {
		ua += " " + existing
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", ua)
	return t.next.RoundTrip(clone)
}
