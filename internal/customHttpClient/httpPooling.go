package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var once sync.Once
var pooledClient *http.Client

// GetClient returns the shared pooled client used by the outbound tools.
func GetClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: customTransport,
			Timeout:   config.ToolHTTPTimeout,
		}
	})
	return pooledClient
}
