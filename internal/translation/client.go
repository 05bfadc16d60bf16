package translation

import (
	"net"
	"net/http"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 10 * time.Second
)

// newHTTPClient builds the outbound client shared by every engine, with
// bounded connect and overall read deadlines.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConnsPerHost:   4,
		},
	}
}
