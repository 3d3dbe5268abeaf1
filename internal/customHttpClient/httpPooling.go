package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocQueryAPI/internal/config"
)

// one pooled transport is shared by the LLM clients and the AWS SDK so
// keep-alive connections are reused across requests
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

var sharedClient = &http.Client{Transport: customTransport}

// GetHTTPClient returns the shared pooled client. Per-call deadlines come from
// the request context, so the client itself carries no timeout.
func GetHTTPClient() *http.Client {
	return sharedClient
}

// CloseIdleConnections drops pooled connections on shutdown.
func CloseIdleConnections() {
	customTransport.CloseIdleConnections()
}
