package app

import (
	"net"
	"net/http"
	"time"
)

// newBatchHTTPClient returns an HTTP client shared by every fetch in a batch.
// It carries no client Timeout because each fetch attaches its own deadline
// to the request context.
func newBatchHTTPClient(concurrency int) *http.Client {
	perHost := 64
	if concurrency > perHost {
		perHost = concurrency
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          0, // no global limit
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}
